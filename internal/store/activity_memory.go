package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vaultsentry/vaultsentry/internal/remediation"
	"github.com/vaultsentry/vaultsentry/internal/threat"
	"github.com/vaultsentry/vaultsentry/internal/triage"
)

// MemoryActivity is an in-memory activity source for development and
// tests. It implements the same collaborator interfaces as ActivityStore.
type MemoryActivity struct {
	mu     sync.RWMutex
	logs   map[uuid.UUID][]threat.AccessLogEntry
	docs   map[uuid.UUID][]threat.DocumentMeta
	states map[uuid.UUID]triage.VaultState
}

// NewMemoryActivity creates an empty MemoryActivity.
func NewMemoryActivity() *MemoryActivity {
	return &MemoryActivity{
		logs:   make(map[uuid.UUID][]threat.AccessLogEntry),
		docs:   make(map[uuid.UUID][]threat.DocumentMeta),
		states: make(map[uuid.UUID]triage.VaultState),
	}
}

// SeedVault loads activity and state for one vault, replacing any
// previous data.
func (m *MemoryActivity) SeedVault(vaultID uuid.UUID, logs []threat.AccessLogEntry, docs []threat.DocumentMeta, state triage.VaultState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[vaultID] = logs
	m.docs[vaultID] = docs
	m.states[vaultID] = state
}

// FetchAccessLogs implements the engine's AccessLogSource.
func (m *MemoryActivity) FetchAccessLogs(_ context.Context, vaultID uuid.UUID) ([]threat.AccessLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logs[vaultID], nil
}

// FetchDocuments implements the engine's DocumentSource.
func (m *MemoryActivity) FetchDocuments(_ context.Context, vaultID uuid.UUID) ([]threat.DocumentMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[vaultID], nil
}

// FetchVaultState implements the engine's VaultStateSource.
func (m *MemoryActivity) FetchVaultState(_ context.Context, vaultID uuid.UUID) (triage.VaultState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[vaultID]
	if !ok {
		return triage.VaultState{}, ErrVaultNotFound
	}
	return state, nil
}

// ExecuteAction implements the engine's ActionExecutor. Lock and
// monitoring actions mutate the held state; everything else is a no-op.
func (m *MemoryActivity) ExecuteAction(_ context.Context, action remediation.RemediationAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[action.VaultID]
	if !ok {
		return ErrVaultNotFound
	}
	if action.Kind == remediation.KindLockVault {
		state.Status = triage.StatusLocked
		m.states[action.VaultID] = state
	}
	return nil
}
