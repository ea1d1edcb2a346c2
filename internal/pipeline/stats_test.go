package pipeline

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		stats.Record(PhaseRender, time.Duration(us)*time.Microsecond)
	}

	snap, ok := stats.Snapshot()[PhaseRender]
	if !ok {
		t.Fatal("expected render timings")
	}
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Min != 100 || snap.Max != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.Min, snap.Max)
	}
	if snap.Avg != 300 {
		t.Fatalf("expected avg=300, got %f", snap.Avg)
	}
	if snap.P50 != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50)
	}
	if snap.P95 != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95)
	}
	if snap.P99 != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99)
	}
}

func TestStatsPhasesAreIndependent(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(PhaseParse, time.Millisecond)
	stats.Record(PhaseParse, time.Millisecond)
	stats.Record(PhasePresent, 2*time.Millisecond)

	snap := stats.Snapshot()
	if snap[PhaseParse].Count != 2 || snap[PhasePresent].Count != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if _, ok := snap[PhaseRender]; ok {
		t.Error("expected no entry for a phase without timings")
	}
}

func TestStatsPrunesExpiredTimings(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record(PhaseTotal, 100*time.Microsecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := stats.Snapshot()[PhaseTotal]; ok {
		t.Fatal("expected expired timings to be pruned")
	}

	stats.Record(PhaseTotal, 200*time.Microsecond)
	snap := stats.Snapshot()[PhaseTotal]
	if snap.Count != 1 || snap.Min != 200 || snap.Max != 200 {
		t.Fatalf("expected a single fresh timing of 200us, got %+v", snap)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record(PhaseParse, -10*time.Microsecond)
	snap := stats.Snapshot()[PhaseParse]
	if snap.Count != 1 || snap.Min != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}
