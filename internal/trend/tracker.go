// Package trend maintains the per-vault threat score history and derives
// delta and velocity between consecutive assessments.
package trend

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

const (
	// snapshotCap bounds each vault's history; oldest snapshots are
	// evicted first once the cap is reached.
	snapshotCap = 100

	// defaultVaultCap bounds how many vaults the tracker holds in memory
	// at once. Least-recently-assessed vaults are evicted, which resets
	// their trend baseline but never affects persisted scores.
	defaultVaultCap = 1024
)

// Movement is the trend derived from the two most recent snapshots of a
// vault. Both fields are nil until two snapshots with distinct timestamps
// exist, so callers can tell "no data" apart from "no change".
type Movement struct {
	Delta    *float64
	Velocity *float64 // points per hour
}

// Tracker records score snapshots per vault. Safe for concurrent use;
// each vault's history is guarded independently so assessments of
// different vaults never contend.
type Tracker struct {
	mu     sync.Mutex
	vaults *lru.Cache[uuid.UUID, *history]
}

type history struct {
	mu        sync.Mutex
	snapshots []threat.ThreatScoreSnapshot
}

// New creates a Tracker bounded to defaultVaultCap vaults.
func New() *Tracker {
	return NewWithCapacity(defaultVaultCap)
}

// NewWithCapacity creates a Tracker bounded to the given number of vaults.
func NewWithCapacity(vaultCap int) *Tracker {
	cache, err := lru.New[uuid.UUID, *history](vaultCap)
	if err != nil {
		// Only reachable with a non-positive capacity.
		panic(err)
	}
	return &Tracker{vaults: cache}
}

// Record appends a snapshot to the vault's ring buffer and returns the
// movement relative to the previous snapshot. Velocity is nil when fewer
// than two snapshots exist or no time elapsed between them.
func (t *Tracker) Record(vaultID uuid.UUID, snap threat.ThreatScoreSnapshot) Movement {
	h := t.historyFor(vaultID)

	h.mu.Lock()
	defer h.mu.Unlock()

	movement := h.movementAgainstLast(snap)

	h.snapshots = append(h.snapshots, snap)
	if len(h.snapshots) > snapshotCap {
		h.snapshots = h.snapshots[len(h.snapshots)-snapshotCap:]
	}
	return movement
}

// Peek returns the movement the snapshot would produce without recording
// it. Used to derive delta and velocity for an assessment before the
// score has been persisted; the snapshot is recorded separately once the
// rest of the run succeeds.
func (t *Tracker) Peek(vaultID uuid.UUID, snap threat.ThreatScoreSnapshot) Movement {
	h := t.historyFor(vaultID)

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.movementAgainstLast(snap)
}

func (h *history) movementAgainstLast(snap threat.ThreatScoreSnapshot) Movement {
	var movement Movement
	if n := len(h.snapshots); n > 0 {
		prev := h.snapshots[n-1]
		delta := snap.Composite - prev.Composite
		movement.Delta = &delta

		if elapsed := snap.Timestamp.Sub(prev.Timestamp).Hours(); elapsed > 0 {
			velocity := delta / elapsed
			movement.Velocity = &velocity
		}
	}
	return movement
}

// History returns a copy of the vault's snapshots in recording order.
func (t *Tracker) History(vaultID uuid.UUID) []threat.ThreatScoreSnapshot {
	t.mu.Lock()
	h, ok := t.vaults.Get(vaultID)
	t.mu.Unlock()
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]threat.ThreatScoreSnapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

func (t *Tracker) historyFor(vaultID uuid.UUID) *history {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.vaults.Get(vaultID); ok {
		return h
	}
	h := &history{}
	t.vaults.Add(vaultID, h)
	return h
}
