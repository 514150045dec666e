package system

import (
	"time"

	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
)

// UnitAISystem runs the per-tick unit behaviour: neutral units pick a new
// wander point once they have no path or have arrived; followers steer
// toward their leader's current position. Phase 1 (Update).
type UnitAISystem struct {
	state *world.State
	nav   world.Navigator
}

func NewUnitAISystem(state *world.State) *UnitAISystem {
	return &UnitAISystem{state: state, nav: state.Nav()}
}

func (s *UnitAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UnitAISystem) Update(_ time.Duration) {
	tol := s.state.Params().ArriveTolerance
	s.state.AllUnits(func(u *world.Unit) {
		switch u.State {
		case world.UnitNeutral:
			if !s.nav.HasPath(u.ID) || s.nav.RemainingDistance(u.ID) < tol {
				s.state.Wander(u.ID)
			}
		case world.UnitFollowing:
			l := s.state.ActiveLeader(u.Leader)
			if l == nil {
				return
			}
			if pos, ok := s.nav.Position(l.ID); ok {
				s.nav.SetDestination(u.ID, pos)
			}
		}
	})
}
