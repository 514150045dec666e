package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and owns the simulation
// clock. Systems registered in the same phase run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	tick    uint64
	now     time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick() uint64       { return r.tick }
func (r *Runner) Now() time.Duration { return r.now }

// Step advances the clock by dt and runs every system once.
func (r *Runner) Step(dt time.Duration) {
	r.ensureSorted()
	r.tick++
	r.now += dt
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// StepPhase runs only the systems of one phase without advancing the clock.
// Used by tests to drive a single stage of the pipeline.
func (r *Runner) StepPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Systems returns the registered systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	out := make([]System, len(r.systems))
	copy(out, r.systems)
	return out
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
