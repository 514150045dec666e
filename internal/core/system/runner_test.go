package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	trail *[]string
}

func (r *recorder) Phase() Phase { return r.phase }
func (r *recorder) Update(time.Duration) {
	*r.trail = append(*r.trail, r.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var trail []string
	r := NewRunner()
	r.Register(&recorder{"cleanup", PhaseCleanup, &trail})
	r.Register(&recorder{"ai", PhaseUpdate, &trail})
	r.Register(&recorder{"units", PhaseUpdate, &trail})
	r.Register(&recorder{"input", PhaseInput, &trail})

	r.Step(100 * time.Millisecond)

	want := []string{"input", "ai", "units", "cleanup"}
	if len(trail) != len(want) {
		t.Fatalf("expected %d updates, got %v", len(want), trail)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s (%v)", i, want[i], trail[i], trail)
		}
	}
}

func TestRunnerAdvancesClock(t *testing.T) {
	r := NewRunner()
	r.Step(100 * time.Millisecond)
	r.Step(100 * time.Millisecond)
	if r.Tick() != 2 {
		t.Fatalf("expected tick 2, got %d", r.Tick())
	}
	if r.Now() != 200*time.Millisecond {
		t.Fatalf("expected 200ms elapsed, got %s", r.Now())
	}

	r.StepPhase(PhaseInput, 100*time.Millisecond)
	if r.Tick() != 2 {
		t.Fatalf("StepPhase must not advance the clock")
	}
}
