package system

import (
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
)

// Controller steers one player-controlled leader. Implementations stand in
// for human input.
type Controller interface {
	Steer(l *world.Leader, nav world.Navigator, dt time.Duration)
}

// WaypointController walks a fixed route, optionally looping. A route with
// no points leaves the leader standing still.
type WaypointController struct {
	points    []world.Vec2
	tolerance float64
	loop      bool
	next      int
}

func NewWaypointController(points []world.Vec2, tolerance float64, loop bool) *WaypointController {
	return &WaypointController{points: points, tolerance: tolerance, loop: loop}
}

func (c *WaypointController) Steer(l *world.Leader, nav world.Navigator, _ time.Duration) {
	if len(c.points) == 0 {
		return
	}
	if nav.HasPath(l.ID) && nav.RemainingDistance(l.ID) >= c.tolerance {
		return
	}
	if c.next >= len(c.points) {
		if !c.loop {
			return
		}
		c.next = 0
	}
	// An unreachable waypoint is skipped.
	nav.SetDestination(l.ID, c.points[c.next])
	c.next++
}

// PlayerInputSystem applies each player leader's Controller.
// Phase 0 (Input).
type PlayerInputSystem struct {
	state       *world.State
	controllers map[ecs.EntityID]Controller
	order       []ecs.EntityID
}

func NewPlayerInputSystem(state *world.State) *PlayerInputSystem {
	return &PlayerInputSystem{state: state, controllers: make(map[ecs.EntityID]Controller)}
}

// Attach binds a controller to a leader, replacing any previous one.
func (s *PlayerInputSystem) Attach(leader ecs.EntityID, c Controller) {
	if _, ok := s.controllers[leader]; !ok {
		s.order = append(s.order, leader)
	}
	s.controllers[leader] = c
}

func (s *PlayerInputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PlayerInputSystem) Update(dt time.Duration) {
	nav := s.state.Nav()
	for _, id := range s.order {
		l := s.state.ActiveLeader(id)
		if l == nil || l.Control != world.ControlPlayer {
			continue
		}
		s.controllers[id].Steer(l, nav, dt)
	}
}
