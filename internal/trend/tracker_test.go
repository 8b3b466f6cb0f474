package trend_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vaultsentry/vaultsentry/internal/threat"
	"github.com/vaultsentry/vaultsentry/internal/trend"
)

var vaultID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func snap(ts time.Time, composite float64) threat.ThreatScoreSnapshot {
	return threat.ThreatScoreSnapshot{Timestamp: ts, Composite: composite}
}

func TestRecord_firstSnapshotHasNoMovement(t *testing.T) {
	tr := trend.New()
	m := tr.Record(vaultID, snap(time.Now(), 42))
	if m.Delta != nil || m.Velocity != nil {
		t.Error("first snapshot must have nil delta and velocity")
	}
}

func TestRecord_deltaAndVelocity(t *testing.T) {
	tr := trend.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(vaultID, snap(base, 20))
	m := tr.Record(vaultID, snap(base.Add(2*time.Hour), 50))

	if m.Delta == nil || *m.Delta != 30 {
		t.Fatalf("Delta = %v, want 30", m.Delta)
	}
	if m.Velocity == nil || *m.Velocity != 15 {
		t.Fatalf("Velocity = %v, want 15 points/hour", m.Velocity)
	}
}

func TestRecord_velocitySignFollowsScoreDirection(t *testing.T) {
	tr := trend.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(vaultID, snap(base, 60))
	m := tr.Record(vaultID, snap(base.Add(time.Hour), 80))
	if m.Velocity == nil || *m.Velocity <= 0 {
		t.Errorf("rising composite: velocity = %v, want > 0", m.Velocity)
	}

	m = tr.Record(vaultID, snap(base.Add(2*time.Hour), 30))
	if m.Velocity == nil || *m.Velocity >= 0 {
		t.Errorf("falling composite: velocity = %v, want < 0", m.Velocity)
	}
}

func TestRecord_zeroElapsedYieldsNilVelocity(t *testing.T) {
	tr := trend.New()
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(vaultID, snap(ts, 20))
	m := tr.Record(vaultID, snap(ts, 40))
	if m.Delta == nil || *m.Delta != 20 {
		t.Errorf("Delta = %v, want 20 even with zero elapsed time", m.Delta)
	}
	if m.Velocity != nil {
		t.Errorf("Velocity = %v, want nil for zero elapsed time", *m.Velocity)
	}
}

func TestRecord_historyCapKeepsMostRecent(t *testing.T) {
	tr := trend.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 150; i++ {
		tr.Record(vaultID, snap(base.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	history := tr.History(vaultID)
	if len(history) != 100 {
		t.Fatalf("history length = %d, want 100", len(history))
	}
	if history[0].Composite != 50 {
		t.Errorf("oldest kept snapshot composite = %v, want 50", history[0].Composite)
	}
	if history[99].Composite != 149 {
		t.Errorf("newest snapshot composite = %v, want 149", history[99].Composite)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Fatal("history is not in timestamp order")
		}
	}
}

func TestPeek_doesNotRecord(t *testing.T) {
	tr := trend.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(vaultID, snap(base, 20))

	peeked := tr.Peek(vaultID, snap(base.Add(2*time.Hour), 50))
	if peeked.Delta == nil || *peeked.Delta != 30 {
		t.Fatalf("peeked Delta = %v, want 30", peeked.Delta)
	}
	if peeked.Velocity == nil || *peeked.Velocity != 15 {
		t.Fatalf("peeked Velocity = %v, want 15 points/hour", peeked.Velocity)
	}
	if got := len(tr.History(vaultID)); got != 1 {
		t.Fatalf("history length after Peek = %d, want 1", got)
	}

	// Recording the same snapshot afterwards sees the same baseline.
	recorded := tr.Record(vaultID, snap(base.Add(2*time.Hour), 50))
	if recorded.Delta == nil || *recorded.Delta != 30 {
		t.Errorf("recorded Delta = %v, want 30", recorded.Delta)
	}
}

func TestHistory_unknownVault(t *testing.T) {
	tr := trend.New()
	if h := tr.History(uuid.New()); h != nil {
		t.Errorf("History for unknown vault = %v, want nil", h)
	}
}

func TestTracker_vaultsAreIndependent(t *testing.T) {
	tr := trend.New()
	other := uuid.New()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tr.Record(vaultID, snap(base, 10))
	m := tr.Record(other, snap(base.Add(time.Hour), 90))
	if m.Delta != nil {
		t.Error("snapshots for one vault must not produce movement for another")
	}
}
