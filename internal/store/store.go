// Package store persists per-vault threat scores between assessments.
//
// Two implementations of ScoreStore are provided:
//   - MemoryStore: in-process, for testing and single-node deployments.
//   - PostgresStore: durable, for production use.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnavailable wraps storage-collaborator failures so the engine can
// distinguish "store down" from "vault has no score yet".
var ErrUnavailable = errors.New("score store unavailable")

// ScoreStore reads and writes the persisted composite threat score that
// anchors each new assessment. A vault with no prior score reads as 0.
type ScoreStore interface {
	// GetThreatScore returns the last persisted score for the vault, or 0
	// when none has been recorded.
	GetThreatScore(ctx context.Context, vaultID uuid.UUID) (float64, error)

	// PutThreatScore persists the vault's new score.
	PutThreatScore(ctx context.Context, vaultID uuid.UUID, score float64) error
}
