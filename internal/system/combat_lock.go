package system

import (
	"time"

	"github.com/crowdclash/server/internal/conflict"
	coresys "github.com/crowdclash/server/internal/core/system"
)

// CombatLockSystem releases combat-locks whose cooldown expired. Phase 0
// (Input), so a released pair can fight again in the same tick's resolve
// phase.
type CombatLockSystem struct {
	engine *conflict.Engine
}

func NewCombatLockSystem(engine *conflict.Engine) *CombatLockSystem {
	return &CombatLockSystem{engine: engine}
}

func (s *CombatLockSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *CombatLockSystem) Update(_ time.Duration) {
	s.engine.ReleaseExpiredLocks()
}
