package system

import (
	"time"

	"github.com/crowdclash/server/internal/conflict"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
)

// ProximitySystem refreshes leader overlap sets after movement.
// Phase 3 (Sense).
type ProximitySystem struct {
	prox *world.Proximity
}

func NewProximitySystem(prox *world.Proximity) *ProximitySystem {
	return &ProximitySystem{prox: prox}
}

func (s *ProximitySystem) Phase() coresys.Phase { return coresys.PhaseSense }

func (s *ProximitySystem) Update(_ time.Duration) {
	s.prox.Detect()
}

// ConflictSystem hands each active leader its queued proximity events, one
// at a time, in leader creation order. Phase 4 (Resolve).
type ConflictSystem struct {
	state  *world.State
	prox   *world.Proximity
	engine *conflict.Engine
}

func NewConflictSystem(state *world.State, prox *world.Proximity, engine *conflict.Engine) *ConflictSystem {
	return &ConflictSystem{state: state, prox: prox, engine: engine}
}

func (s *ConflictSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *ConflictSystem) Update(_ time.Duration) {
	for _, l := range s.state.ActiveLeaders() {
		for _, ev := range s.prox.Drain(l.ID) {
			// A leader defeated by an earlier event stops processing.
			if !l.Active {
				break
			}
			s.engine.HandleProximity(l, ev)
		}
	}
}
