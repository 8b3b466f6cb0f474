// Package client is the Go SDK for the VaultSentry threat engine API.
// It wraps the HTTP surface exposed by sentryd: running assessments,
// reading score history, and validating remediation actions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scores is the granular score block of an assessment.
type Scores struct {
	Composite float64            `json:"composite"`
	Logic     map[string]float64 `json:"logic"`
	Category  map[string]float64 `json:"category"`
	Delta     *float64           `json:"delta"`
	Velocity  *float64           `json:"velocity"`
}

// Recommendation is one prioritized protective recommendation.
type Recommendation struct {
	Priority int    `json:"priority"`
	Urgency  string `json:"urgency"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
}

// Action is one concrete remediation action proposed by an assessment.
type Action struct {
	Kind        string      `json:"kind"`
	VaultID     uuid.UUID   `json:"vault_id"`
	DocumentIDs []uuid.UUID `json:"document_ids,omitempty"`
	NomineeIDs  []uuid.UUID `json:"nominee_ids,omitempty"`
	SessionID   uuid.UUID   `json:"session_id,omitempty"`
	IP          string      `json:"ip,omitempty"`
}

// Triage is the executable half of an assessment.
type Triage struct {
	Severity    string   `json:"severity"`
	Priority    int      `json:"priority"`
	Questions   []string `json:"questions,omitempty"`
	Recommended []Action `json:"recommended"`
	Auto        []Action `json:"auto"`
}

// Assessment is the full result of one analyze call.
type Assessment struct {
	ID              uuid.UUID        `json:"id"`
	VaultID         uuid.UUID        `json:"vault_id"`
	Timestamp       time.Time        `json:"timestamp"`
	Scores          Scores           `json:"scores"`
	Level           string           `json:"level"`
	SelectedAction  string           `json:"selected_action"`
	Recommendations []Recommendation `json:"recommendations"`
	Triage          Triage           `json:"triage"`
}

// Snapshot is one entry of a vault's score history.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Composite float64   `json:"composite"`
}

// VaultState is the live state an action validation runs against.
type VaultState struct {
	VaultID         uuid.UUID   `json:"vault_id"`
	Status          string      `json:"status"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	CallerID        uuid.UUID   `json:"caller_id"`
	SessionToken    string      `json:"session_token,omitempty"`
	DocumentIDs     []uuid.UUID `json:"document_ids,omitempty"`
	RevokedNominees []uuid.UUID `json:"revoked_nominees,omitempty"`
	RevokedSessions []uuid.UUID `json:"revoked_sessions,omitempty"`
}

// ValidationResult is the outcome of an action validation.
type ValidationResult struct {
	CanExecute bool   `json:"can_execute"`
	Reason     string `json:"reason,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one sentryd instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for the sentryd instance at baseURL
// (e.g. "http://localhost:8090").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Analyze runs a full threat assessment for the vault.
func (c *Client) Analyze(ctx context.Context, vaultID uuid.UUID) (*Assessment, error) {
	var out Assessment
	path := fmt.Sprintf("/v1/vaults/%s/analyze", vaultID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the vault's recorded score snapshots, oldest first.
func (c *Client) History(ctx context.Context, vaultID uuid.UUID) ([]Snapshot, error) {
	var out struct {
		Snapshots []Snapshot `json:"snapshots"`
	}
	path := fmt.Sprintf("/v1/vaults/%s/history", vaultID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Snapshots, nil
}

// ValidateAction checks whether the action could execute against the
// given live state, without running it.
func (c *Client) ValidateAction(ctx context.Context, action Action, state VaultState) (*ValidationResult, error) {
	body := map[string]any{"action": action, "state": state}
	var out ValidationResult
	if err := c.do(ctx, http.MethodPost, "/v1/actions/validate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
