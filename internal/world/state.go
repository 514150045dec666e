package world

import (
	"github.com/crowdclash/server/internal/core/ecs"
	"go.uber.org/zap"
)

// State holds every unit and leader in the simulation.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	ecs     *ecs.World
	units   *ecs.Store[Unit]
	leaders *ecs.Store[Leader]
	nav     Navigator
	params  UnitParams
	tints   []TintSink
	log     *zap.Logger
}

func NewState(w *ecs.World, nav Navigator, params UnitParams, log *zap.Logger) *State {
	s := &State{
		ecs:     w,
		units:   ecs.NewStore[Unit](),
		leaders: ecs.NewStore[Leader](),
		nav:     nav,
		params:  params,
		log:     log,
	}
	w.Register(s.units)
	w.Register(s.leaders)
	return s
}

func (s *State) ECS() *ecs.World        { return s.ecs }
func (s *State) Nav() Navigator         { return s.nav }
func (s *State) Params() UnitParams     { return s.params }
func (s *State) AddTintSink(t TintSink) { s.tints = append(s.tints, t) }

// Unit returns the unit for id, or nil when id is not a live unit.
func (s *State) Unit(id ecs.EntityID) *Unit {
	if !s.ecs.Alive(id) {
		return nil
	}
	u, _ := s.units.Get(id)
	return u
}

// Leader returns the leader for id, or nil when the handle is no longer
// valid. A leader defeated this tick is still returned (Active == false)
// until the cleanup phase destroys it.
func (s *State) Leader(id ecs.EntityID) *Leader {
	if !s.ecs.Alive(id) {
		return nil
	}
	l, _ := s.leaders.Get(id)
	return l
}

// ActiveLeader is Leader restricted to leaders still in the simulation.
func (s *State) ActiveLeader(id ecs.EntityID) *Leader {
	if l := s.Leader(id); l != nil && l.Active {
		return l
	}
	return nil
}

// AllUnits iterates every unit, idle ones included, in creation order.
func (s *State) AllUnits(fn func(*Unit)) {
	s.units.Each(func(_ ecs.EntityID, u *Unit) { fn(u) })
}

// ActiveLeaders returns the leaders still in the simulation, in creation
// order. The slice is safe to hold while leaders are defeated.
func (s *State) ActiveLeaders() []*Leader {
	var out []*Leader
	s.leaders.Each(func(_ ecs.EntityID, l *Leader) {
		if l.Active {
			out = append(out, l)
		}
	})
	return out
}

// AllLeaders iterates every leader that has not been destroyed yet.
func (s *State) AllLeaders(fn func(*Leader)) {
	s.leaders.Each(func(_ ecs.EntityID, l *Leader) { fn(l) })
}

// FindLeader returns the first active leader bearing tag, or nil.
func (s *State) FindLeader(tag Tag) *Leader {
	var found *Leader
	s.leaders.Each(func(_ ecs.EntityID, l *Leader) {
		if found == nil && l.Active && l.LeaderTag() == tag {
			found = l
		}
	})
	return found
}

// AddLeader creates a leader at scene setup.
func (s *State) AddLeader(spec LeaderSpec) *Leader {
	id := s.ecs.CreateEntity()
	l := &Leader{
		ID:      id,
		Name:    spec.Name,
		Team:    spec.Team,
		Enemy:   spec.Enemy,
		Color:   spec.Color,
		Control: spec.Control,
		Active:  true,
	}
	if spec.Control == ControlAI {
		l.AI = &AIState{Mode: ModeWanderAndCollect}
	}
	s.leaders.Set(id, l)
	s.nav.Place(id, spec.Pos, spec.Heading)
	s.nav.SetSpeed(id, spec.Speed)
	return l
}

// DeactivateLeader permanently removes a leader from the simulation: no
// further ticks, no further proximity events. The handle becomes invalid
// at the end of the tick. Returns false if it was already inactive.
func (s *State) DeactivateLeader(l *Leader) bool {
	if l == nil || !l.Active {
		return false
	}
	l.Active = false
	l.AI = nil
	s.nav.Remove(l.ID)
	s.ecs.MarkForDestruction(l.ID)
	return true
}

// TagOf returns the current classification of an active actor.
func (s *State) TagOf(id ecs.EntityID) (Tag, bool) {
	if u := s.Unit(id); u != nil {
		if !u.Active() {
			return Tag{}, false
		}
		return u.Tag, true
	}
	if l := s.ActiveLeader(id); l != nil {
		return l.LeaderTag(), true
	}
	return Tag{}, false
}

// Counts tallies units by state.
func (s *State) Counts() (idle, neutral, following int) {
	s.units.Each(func(_ ecs.EntityID, u *Unit) {
		switch u.State {
		case UnitIdle:
			idle++
		case UnitNeutral:
			neutral++
		case UnitFollowing:
			following++
		}
	})
	return
}
