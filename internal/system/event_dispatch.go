package system

import (
	"time"

	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 0 (Input), registered before every other input system.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
