package system

import (
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

// HUDSystem polls every active leader's crowd size (followers + 1) and
// pushes it to the registered displays. Phase 6 (Output).
type HUDSystem struct {
	state    *world.State
	displays []world.CountDisplay
}

func NewHUDSystem(state *world.State, displays ...world.CountDisplay) *HUDSystem {
	return &HUDSystem{state: state, displays: displays}
}

func (s *HUDSystem) AddDisplay(d world.CountDisplay) { s.displays = append(s.displays, d) }

func (s *HUDSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *HUDSystem) Update(_ time.Duration) {
	for _, l := range s.state.ActiveLeaders() {
		n := l.CrowdSize()
		for _, d := range s.displays {
			d.ShowCount(l.ID, l.Name, n)
		}
	}
}

// LogDisplay is a headless CountDisplay that logs a leader's count only
// when it changes.
type LogDisplay struct {
	last map[ecs.EntityID]int
	log  *zap.Logger
}

func NewLogDisplay(log *zap.Logger) *LogDisplay {
	return &LogDisplay{last: make(map[ecs.EntityID]int), log: log}
}

func (d *LogDisplay) ShowCount(leader ecs.EntityID, name string, count int) {
	if prev, ok := d.last[leader]; ok && prev == count {
		return
	}
	d.last[leader] = count
	d.log.Info("crowd size", zap.String("leader", name), zap.Int("count", count))
}

// Last returns the most recent count shown for leader.
func (d *LogDisplay) Last(leader ecs.EntityID) (int, bool) {
	n, ok := d.last[leader]
	return n, ok
}
