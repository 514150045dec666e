package system

import (
	"time"

	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
)

// MovementSystem integrates every agent toward its destination.
// Phase 2 (Move).
type MovementSystem struct {
	nav world.Navigator
}

func NewMovementSystem(nav world.Navigator) *MovementSystem {
	return &MovementSystem{nav: nav}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(dt time.Duration) {
	s.nav.Advance(dt)
}
