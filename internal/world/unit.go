package world

import (
	"github.com/crowdclash/server/internal/core/ecs"
	"go.uber.org/zap"
)

// UnitState is the unit lifecycle: Idle (in pool, not simulated), Neutral
// (active, wandering) and Following (active, affiliated to one leader).
type UnitState uint8

const (
	UnitIdle UnitState = iota
	UnitNeutral
	UnitFollowing
)

func (s UnitState) String() string {
	switch s {
	case UnitNeutral:
		return "neutral"
	case UnitFollowing:
		return "following"
	default:
		return "idle"
	}
}

// Unit is a pooled, mobile actor.
type Unit struct {
	ID       ecs.EntityID
	Category Category
	State    UnitState
	Tag      Tag
	Leader   ecs.EntityID // follow target, set only while Following
	Tint     Color
}

func (u *Unit) Active() bool { return u.State != UnitIdle }

// UnitParams configures unit movement.
type UnitParams struct {
	WanderRadius    float64
	ArriveTolerance float64
	Speed           float64
	NeutralTint     Color
	CategorySpeed   map[Category]float64 // overrides Speed per category
}

func (p UnitParams) speedFor(c Category) float64 {
	if v, ok := p.CategorySpeed[c]; ok && v > 0 {
		return v
	}
	return p.Speed
}

// NewUnit instantiates an idle unit of the given category. Only the pool
// calls this, and only while it is being populated.
func (s *State) NewUnit(cat Category) ecs.EntityID {
	id := s.ecs.CreateEntity()
	s.units.Set(id, &Unit{
		ID:       id,
		Category: cat,
		State:    UnitIdle,
		Tag:      NeutralTag,
		Tint:     s.params.NeutralTint,
	})
	return id
}

// Place moves a unit onto the navigation surface. Part of the pool
// lifecycle contract.
func (s *State) Place(id ecs.EntityID, pos Vec2, heading float64) {
	u, ok := s.units.Get(id)
	if !ok {
		return
	}
	s.nav.Place(id, pos, heading)
	s.nav.SetSpeed(id, s.params.speedFor(u.Category))
}

// SetActive switches a unit between the world and its pool. Deactivation
// drops the agent and clears allegiance; it is the only way back to Idle.
func (s *State) SetActive(id ecs.EntityID, active bool) {
	u, ok := s.units.Get(id)
	if !ok {
		return
	}
	if active {
		if u.State == UnitIdle {
			u.State = UnitNeutral
		}
		return
	}
	u.State = UnitIdle
	u.Leader = 0
	u.Tag = NeutralTag
	s.nav.Remove(id)
}

// OnObjectSpawn is the reset hook invoked by the pool on acquire:
// Idle → Neutral with allegiance, follow target, tint and movement reset,
// and a fresh wander destination issued immediately.
func (s *State) OnObjectSpawn(id ecs.EntityID) {
	u, ok := s.units.Get(id)
	if !ok {
		return
	}
	u.State = UnitNeutral
	u.Leader = 0
	u.Tag = NeutralTag
	s.setTint(u, s.params.NeutralTint)
	s.nav.SetStopped(id, false)
	s.Wander(id)
}

// Follow makes a unit follow leader: Neutral → Following, or a transfer
// from one leader to another. It does not touch any crowd; the conflict
// engine owns crowd membership.
func (s *State) Follow(id ecs.EntityID, leader *Leader) bool {
	u, ok := s.units.Get(id)
	if !ok || u.State == UnitIdle || leader == nil {
		return false
	}
	u.State = UnitFollowing
	u.Leader = leader.ID
	s.setTint(u, leader.Color)
	s.nav.SetStopped(id, false)
	s.nav.ResetPath(id)
	return true
}

// Relabel sets the classification tag of a unit.
func (s *State) Relabel(id ecs.EntityID, tag Tag) {
	if u, ok := s.units.Get(id); ok {
		u.Tag = tag
	}
}

// Wander sends a unit to a random reachable point around it.
func (s *State) Wander(id ecs.EntityID) bool {
	pos, ok := s.nav.Position(id)
	if !ok {
		return false
	}
	dest, ok := s.nav.RandomPoint(pos, s.params.WanderRadius)
	if !ok {
		s.log.Debug("no reachable wander point", zap.Stringer("unit", id))
		return false
	}
	return s.nav.SetDestination(id, dest)
}

func (s *State) setTint(u *Unit, c Color) {
	u.Tint = c
	for _, sink := range s.tints {
		sink.Tinted(u.ID, c)
	}
}
