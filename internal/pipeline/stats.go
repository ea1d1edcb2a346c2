package pipeline

import (
	"slices"
	"sync"
	"time"
)

// Phases timed by Stats.
const (
	PhaseParse   = "parse"
	PhaseRender  = "render"
	PhasePresent = "present"
	PhaseTotal   = "total"
)

type timing struct {
	at     time.Time
	micros int64
}

// LatencySnapshot aggregates the timings of one phase, in microseconds.
type LatencySnapshot struct {
	Count int     `json:"count"`
	Min   int64   `json:"min_us"`
	Max   int64   `json:"max_us"`
	Avg   float64 `json:"avg_us"`
	P50   float64 `json:"p50_us"`
	P95   float64 `json:"p95_us"`
	P99   float64 `json:"p99_us"`
}

// Stats keeps per-phase conversion timings within a rolling window.
type Stats struct {
	mu     sync.Mutex
	window time.Duration
	phases map[string][]timing
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, phases: make(map[string][]timing)}
}

// Record adds one timing for phase.
func (s *Stats) Record(phase string, d time.Duration) {
	micros := max(d.Microseconds(), 0)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases[phase] = append(prune(s.phases[phase], now.Add(-s.window)), timing{at: now, micros: micros})
}

// Snapshot aggregates every phase that has timings inside the window.
func (s *Stats) Snapshot() map[string]LatencySnapshot {
	cutoff := time.Now().Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]LatencySnapshot, len(s.phases))
	for phase, timings := range s.phases {
		timings = prune(timings, cutoff)
		s.phases[phase] = timings
		if len(timings) == 0 {
			continue
		}
		out[phase] = aggregate(timings)
	}
	return out
}

func aggregate(timings []timing) LatencySnapshot {
	values := make([]int64, len(timings))
	var sum int64
	for i, t := range timings {
		values[i] = t.micros
		sum += t.micros
	}
	slices.Sort(values)

	return LatencySnapshot{
		Count: len(values),
		Min:   values[0],
		Max:   values[len(values)-1],
		Avg:   float64(sum) / float64(len(values)),
		P50:   percentile(values, 50),
		P95:   percentile(values, 95),
		P99:   percentile(values, 99),
	}
}

// prune drops timings older than cutoff, reusing the backing array.
func prune(timings []timing, cutoff time.Time) []timing {
	kept := timings[:0]
	for _, t := range timings {
		if !t.at.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
