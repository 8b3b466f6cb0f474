package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaultsentry/vaultsentry/internal/engine"
	"github.com/vaultsentry/vaultsentry/internal/handler"
	"github.com/vaultsentry/vaultsentry/internal/store"
	"github.com/vaultsentry/vaultsentry/internal/triage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryActivity) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	activity := store.NewMemoryActivity()
	eng := engine.New(engine.Config{
		Logs:       activity,
		Docs:       activity,
		State:      activity,
		Scores:     store.NewMemory(),
		Executor:   activity,
		SessionKey: []byte("handler-test-key"),
	})

	router := gin.New()
	srv := handler.New(eng, zap.NewNop())
	srv.Register(router.Group("/v1"))
	return router, activity
}

func seedVault(activity *store.MemoryActivity) uuid.UUID {
	vaultID := uuid.New()
	owner := uuid.New()
	activity.SeedVault(vaultID, nil, nil, triage.VaultState{
		VaultID:  vaultID,
		Status:   triage.StatusUnlocked,
		OwnerID:  owner,
		CallerID: owner,
	})
	return vaultID
}

func TestAnalyzeEndpoint(t *testing.T) {
	router, activity := newTestRouter(t)
	vaultID := seedVault(activity)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/vaults/"+vaultID.String()+"/analyze", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID     uuid.UUID `json:"id"`
		Level  string    `json:"level"`
		Scores struct {
			Composite float64 `json:"composite"`
		} `json:"scores"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == uuid.Nil || resp.Level != "minimal" {
		t.Errorf("response = %+v, want minimal level with an id", resp)
	}
}

func TestAnalyzeEndpoint_invalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/vaults/not-a-uuid/analyze", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a malformed vault id", w.Code)
	}
}

func TestAnalyzeEndpoint_unknownVault(t *testing.T) {
	router, _ := newTestRouter(t)

	// No seeded state: the state fetch fails, which surfaces as 502.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/vaults/"+uuid.NewString()+"/analyze", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 when vault data cannot be fetched", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	router, activity := newTestRouter(t)
	vaultID := seedVault(activity)

	// Two assessments, then read back the history.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/vaults/"+vaultID.String()+"/analyze", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("analyze %d: status = %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/vaults/"+vaultID.String()+"/history", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestValidateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	vaultID := uuid.New()

	body, _ := json.Marshal(map[string]any{
		"action": map[string]any{
			"kind":     "lock_vault",
			"vault_id": vaultID,
		},
		"state": map[string]any{
			"vault_id": vaultID,
			"status":   "locked",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actions/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		CanExecute bool   `json:"can_execute"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CanExecute || resp.Reason == "" {
		t.Errorf("response = %+v, want a reasoned rejection", resp)
	}
}
