package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: last tick's events, expired timers, steering input
	PhaseUpdate                  // 1: AI decisions and unit state machines
	PhaseMove                    // 2: movement integration
	PhaseSense                   // 3: proximity detection
	PhaseResolve                 // 4: recruitment + combat resolution
	PhasePostUpdate              // 5: population spawning
	PhaseOutput                  // 6: count displays, observer snapshots
	PhasePersist                 // 7: journal + trace flush
	PhaseCleanup                 // 8: destroy queued entities
)

var phaseNames = [...]string{"input", "update", "move", "sense", "resolve", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Clock is the single shared simulation clock. Tick counts completed
// calls to Runner.Tick including the one in progress; Now is the simulated
// time elapsed at the start of the current tick plus its dt.
type Clock interface {
	Tick() uint64
	Now() time.Duration
}
