package world

import "github.com/crowdclash/server/internal/core/ecs"

// ProximityEvent reports that Other entered a leader's collision volume.
// Tag is Other's classification when the overlap began.
type ProximityEvent struct {
	Leader ecs.EntityID
	Other  ecs.EntityID
	Tag    Tag
}

// Proximity is the proximity-detection collaborator. Only leaders carry a
// trigger volume; an event is produced once per overlap transition (an
// actor must leave the radius before it can enter again). Events are
// queued per leader and consumed once per tick by the owning leader.
type Proximity struct {
	state    *State
	radius   float64
	overlaps map[ecs.EntityID]map[ecs.EntityID]struct{}
	inbox    map[ecs.EntityID][]ProximityEvent
}

func NewProximity(state *State, radius float64) *Proximity {
	return &Proximity{
		state:    state,
		radius:   radius,
		overlaps: make(map[ecs.EntityID]map[ecs.EntityID]struct{}),
		inbox:    make(map[ecs.EntityID][]ProximityEvent),
	}
}

func (p *Proximity) Radius() float64 { return p.radius }

// Detect refreshes every active leader's overlap set and queues "entered"
// events for new overlaps, ordered by the other actor's handle.
func (p *Proximity) Detect() {
	nav := p.state.Nav()
	live := make(map[ecs.EntityID]bool)
	for _, l := range p.state.ActiveLeaders() {
		live[l.ID] = true
		pos, ok := nav.Position(l.ID)
		if !ok {
			continue
		}
		prev := p.overlaps[l.ID]
		cur := make(map[ecs.EntityID]struct{})
		for _, other := range nav.Nearby(pos, p.radius) {
			if other == l.ID {
				continue
			}
			tag, active := p.state.TagOf(other)
			if !active {
				continue
			}
			op, ok := nav.Position(other)
			if !ok || op.Dist(pos) > p.radius {
				continue
			}
			cur[other] = struct{}{}
			if _, was := prev[other]; was {
				continue
			}
			p.inbox[l.ID] = append(p.inbox[l.ID], ProximityEvent{Leader: l.ID, Other: other, Tag: tag})
		}
		p.overlaps[l.ID] = cur
	}
	for id := range p.overlaps {
		if !live[id] {
			delete(p.overlaps, id)
			delete(p.inbox, id)
		}
	}
}

// Drain returns and clears the events queued for leader.
func (p *Proximity) Drain(leader ecs.EntityID) []ProximityEvent {
	evs := p.inbox[leader]
	delete(p.inbox, leader)
	return evs
}

// Overlapping reports whether other is inside leader's volume as of the
// last Detect.
func (p *Proximity) Overlapping(leader, other ecs.EntityID) bool {
	_, ok := p.overlaps[leader][other]
	return ok
}
