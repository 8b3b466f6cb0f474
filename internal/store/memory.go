package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory, thread-safe ScoreStore implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[uuid.UUID]float64
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{scores: make(map[uuid.UUID]float64)}
}

// GetThreatScore implements ScoreStore.
func (s *MemoryStore) GetThreatScore(_ context.Context, vaultID uuid.UUID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[vaultID], nil
}

// PutThreatScore implements ScoreStore.
func (s *MemoryStore) PutThreatScore(_ context.Context, vaultID uuid.UUID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[vaultID] = score
	return nil
}
