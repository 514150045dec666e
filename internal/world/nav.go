package world

import (
	"math"
	"math/rand"
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
)

// Navigator is the spatial movement collaborator: it moves actors toward
// destinations over time, reports path state, and samples reachable points.
type Navigator interface {
	Place(id ecs.EntityID, pos Vec2, heading float64)
	Remove(id ecs.EntityID)
	Position(id ecs.EntityID) (Vec2, bool)
	SetSpeed(id ecs.EntityID, speed float64)
	SetStopped(id ecs.EntityID, stopped bool)
	// SetDestination starts moving toward dest. Returns false (and leaves
	// the agent without a path) when dest is not reachable.
	SetDestination(id ecs.EntityID, dest Vec2) bool
	ResetPath(id ecs.EntityID)
	HasPath(id ecs.EntityID) bool
	// RemainingDistance is the distance left on the current path, zero
	// when there is none.
	RemainingDistance(id ecs.EntityID) float64
	RandomPoint(origin Vec2, radius float64) (Vec2, bool)
	Nearby(p Vec2, radius float64) []ecs.EntityID
	Advance(dt time.Duration)
}

// Agent is one actor on the navigation surface.
type Agent struct {
	Pos     Vec2
	Heading float64
	Dest    Vec2
	HasPath bool
	Stopped bool
	Speed   float64
}

const randomPointTries = 30

// Nav moves agents in straight lines over a Terrain, sliding along one axis
// when the direct step is blocked and dropping the path when both are.
type Nav struct {
	agents  *ecs.Store[Agent]
	terrain *Terrain
	grid    *AOIGrid
	rng     *rand.Rand
}

func NewNav(terrain *Terrain, grid *AOIGrid, rng *rand.Rand) *Nav {
	return &Nav{
		agents:  ecs.NewStore[Agent](),
		terrain: terrain,
		grid:    grid,
		rng:     rng,
	}
}

func (n *Nav) Terrain() *Terrain { return n.terrain }

func (n *Nav) Agent(id ecs.EntityID) (*Agent, bool) { return n.agents.Get(id) }

func (n *Nav) Place(id ecs.EntityID, pos Vec2, heading float64) {
	if a, ok := n.agents.Get(id); ok {
		n.grid.Move(id, a.Pos, pos)
		a.Pos = pos
		a.Heading = heading
		a.HasPath = false
		return
	}
	n.agents.Set(id, &Agent{Pos: pos, Heading: heading})
	n.grid.Add(id, pos)
}

func (n *Nav) Remove(id ecs.EntityID) {
	a, ok := n.agents.Get(id)
	if !ok {
		return
	}
	n.grid.Remove(id, a.Pos)
	n.agents.Remove(id)
}

func (n *Nav) Position(id ecs.EntityID) (Vec2, bool) {
	if a, ok := n.agents.Get(id); ok {
		return a.Pos, true
	}
	return Vec2{}, false
}

func (n *Nav) SetSpeed(id ecs.EntityID, speed float64) {
	if a, ok := n.agents.Get(id); ok {
		a.Speed = speed
	}
}

func (n *Nav) SetStopped(id ecs.EntityID, stopped bool) {
	if a, ok := n.agents.Get(id); ok {
		a.Stopped = stopped
	}
}

func (n *Nav) SetDestination(id ecs.EntityID, dest Vec2) bool {
	a, ok := n.agents.Get(id)
	if !ok {
		return false
	}
	if !n.terrain.Walkable(dest) {
		a.HasPath = false
		return false
	}
	a.Dest = dest
	a.HasPath = true
	return true
}

func (n *Nav) ResetPath(id ecs.EntityID) {
	if a, ok := n.agents.Get(id); ok {
		a.HasPath = false
	}
}

func (n *Nav) HasPath(id ecs.EntityID) bool {
	a, ok := n.agents.Get(id)
	return ok && a.HasPath
}

func (n *Nav) RemainingDistance(id ecs.EntityID) float64 {
	a, ok := n.agents.Get(id)
	if !ok || !a.HasPath {
		return 0
	}
	return a.Pos.Dist(a.Dest)
}

// RandomPoint samples uniformly inside the disk of radius around origin
// and returns the first walkable sample. Falls back to origin itself.
func (n *Nav) RandomPoint(origin Vec2, radius float64) (Vec2, bool) {
	for i := 0; i < randomPointTries; i++ {
		theta := n.rng.Float64() * 2 * math.Pi
		r := radius * math.Sqrt(n.rng.Float64())
		p := origin.Add(FromHeading(theta).Scale(r))
		if n.terrain.Walkable(p) {
			return p, true
		}
	}
	if n.terrain.Walkable(origin) {
		return origin, true
	}
	return Vec2{}, false
}

// Nearby returns the agents whose cells overlap the query square.
func (n *Nav) Nearby(p Vec2, radius float64) []ecs.EntityID {
	return n.grid.Query(p, radius)
}

// Advance integrates every moving agent by dt.
func (n *Nav) Advance(dt time.Duration) {
	secs := dt.Seconds()
	n.agents.Each(func(id ecs.EntityID, a *Agent) {
		if !a.HasPath || a.Stopped || a.Speed <= 0 {
			return
		}
		to := a.Dest.Sub(a.Pos)
		dist := to.Len()
		if dist == 0 {
			return
		}
		step := a.Speed * secs
		next := a.Dest
		if dist > step {
			next = a.Pos.Add(to.Scale(step / dist))
		}
		if !n.terrain.Walkable(next) {
			slid, ok := n.slide(a.Pos, next)
			if !ok {
				a.HasPath = false
				return
			}
			next = slid
		}
		a.Heading = next.Sub(a.Pos).Heading()
		n.grid.Move(id, a.Pos, next)
		a.Pos = next
	})
}

func (n *Nav) slide(from, to Vec2) (Vec2, bool) {
	if p := (Vec2{X: to.X, Z: from.Z}); p != from && n.terrain.Walkable(p) {
		return p, true
	}
	if p := (Vec2{X: from.X, Z: to.Z}); p != from && n.terrain.Walkable(p) {
		return p, true
	}
	return from, false
}
