package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

// flaky fails its first n pings, then succeeds.
type flaky struct {
	remaining int
}

func (f *flaky) ping(_ context.Context) error {
	if f.remaining > 0 {
		f.remaining--
		return errors.New("connection refused")
	}
	return nil
}

func TestCheckAll_healthyDependency(t *testing.T) {
	checker := New(Config{ProbeTimeout: time.Second, FailThreshold: 3}, zap.NewNop(),
		Check{Name: "postgres", Ping: (&flaky{}).ping},
	)

	checker.CheckAll(context.Background())

	if !checker.Healthy() {
		t.Error("a passing dependency must report healthy")
	}
	snapshot := checker.Snapshot()
	if len(snapshot) != 1 || !snapshot[0].Healthy || snapshot[0].Name != "postgres" {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestCheckAll_unhealthyOnlyAfterThreshold(t *testing.T) {
	checker := New(Config{ProbeTimeout: time.Second, FailThreshold: 3}, zap.NewNop(),
		Check{Name: "nats", Ping: (&flaky{remaining: 100}).ping},
	)

	// Two failures: still below threshold.
	checker.CheckAll(context.Background())
	checker.CheckAll(context.Background())
	if !checker.Healthy() {
		t.Fatal("dependency must stay healthy below the fail threshold")
	}

	// Third failure crosses it.
	checker.CheckAll(context.Background())
	if checker.Healthy() {
		t.Error("dependency must report unhealthy at the fail threshold")
	}
	snapshot := checker.Snapshot()
	if snapshot[0].LastError == "" {
		t.Error("snapshot must carry the probe error")
	}
}

func TestCheckAll_recoversOnSuccess(t *testing.T) {
	checker := New(Config{ProbeTimeout: time.Second, FailThreshold: 3}, zap.NewNop(),
		Check{Name: "postgres", Ping: (&flaky{remaining: 3}).ping},
	)

	// Fail three times, then succeed.
	for i := 0; i < 4; i++ {
		checker.CheckAll(context.Background())
	}

	if !checker.Healthy() {
		t.Error("a recovered dependency must report healthy again")
	}
}

func TestHealthy_aggregatesAcrossDependencies(t *testing.T) {
	checker := New(Config{ProbeTimeout: time.Second, FailThreshold: 1}, zap.NewNop(),
		Check{Name: "postgres", Ping: (&flaky{}).ping},
		Check{Name: "nats", Ping: (&flaky{remaining: 100}).ping},
	)

	checker.CheckAll(context.Background())

	if checker.Healthy() {
		t.Error("one down dependency must make the aggregate unhealthy")
	}
	snapshot := checker.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snapshot))
	}
}
