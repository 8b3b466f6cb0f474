package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/pkg/client"
)

func TestAnalyze(t *testing.T) {
	vaultID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if want := "/v1/vaults/" + vaultID.String() + "/analyze"; r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":              uuid.New(),
			"vault_id":        vaultID,
			"level":           "medium_high",
			"selected_action": "enable_enhanced_monitoring",
			"scores":          map[string]any{"composite": 55.2},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	a, err := c.Analyze(context.Background(), vaultID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Level != "medium_high" || a.Scores.Composite != 55.2 {
		t.Errorf("assessment = %+v", a)
	}
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"count": 2,
			"snapshots": []map[string]any{
				{"composite": 10.0},
				{"composite": 25.0},
			},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	snapshots, err := c.History(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(snapshots) != 2 || snapshots[1].Composite != 25.0 {
		t.Errorf("snapshots = %+v", snapshots)
	}
}

func TestValidateAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action client.Action `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Action.Kind != "lock_vault" {
			t.Errorf("action kind = %s", req.Action.Kind)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"can_execute": false,
			"reason":      "vault is already locked",
		})
	}))
	defer srv.Close()

	vaultID := uuid.New()
	c := client.New(srv.URL)
	result, err := c.ValidateAction(context.Background(),
		client.Action{Kind: "lock_vault", VaultID: vaultID},
		client.VaultState{VaultID: vaultID, Status: "locked"},
	)
	if err != nil {
		t.Fatalf("ValidateAction: %v", err)
	}
	if result.CanExecute || result.Reason == "" {
		t.Errorf("result = %+v, want rejection with reason", result)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "fetching vault data failed"})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Analyze(context.Background(), uuid.New())
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message == "" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
