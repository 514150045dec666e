package system

import (
	"time"

	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/observer"
	"github.com/crowdclash/server/internal/world"
)

// SnapshotPublisher receives observer frames (observer.Server).
type SnapshotPublisher interface {
	Publish(snap observer.Snapshot)
}

// ObserverSystem publishes a snapshot every N ticks, carrying the events
// dispatched since the previous one. Phase 6 (Output).
type ObserverSystem struct {
	state  *world.State
	pub    SnapshotPublisher
	clock  coresys.Clock
	match  string
	every  uint64
	events []event.Record
}

func NewObserverSystem(state *world.State, bus *event.Bus, pub SnapshotPublisher, clock coresys.Clock, match string, every int) *ObserverSystem {
	if every < 1 {
		every = 1
	}
	s := &ObserverSystem{state: state, pub: pub, clock: clock, match: match, every: uint64(every)}
	event.SubscribeRecords(bus, func(r event.Record) { s.events = append(s.events, r) })
	return s
}

func (s *ObserverSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ObserverSystem) Update(_ time.Duration) {
	if s.clock.Tick()%s.every != 0 {
		return
	}
	s.pub.Publish(s.Snapshot())
	s.events = nil
}

// Snapshot builds the current frame.
func (s *ObserverSystem) Snapshot() observer.Snapshot {
	nav := s.state.Nav()
	snap := observer.Snapshot{
		Match:  s.match,
		Tick:   s.clock.Tick(),
		Events: s.events,
	}
	for _, l := range s.state.ActiveLeaders() {
		ls := observer.LeaderState{
			ID:     l.ID.String(),
			Name:   l.Name,
			Team:   int(l.Team),
			Color:  l.Color.Hex(),
			Crowd:  l.CrowdSize(),
			Locked: l.CombatLocked,
		}
		if p, ok := nav.Position(l.ID); ok {
			ls.X, ls.Z = p.X, p.Z
		}
		if l.AI != nil {
			ls.Mode = l.AI.Mode.String()
		}
		snap.Leaders = append(snap.Leaders, ls)
	}
	idle, neutral, following := s.state.Counts()
	snap.Units = observer.UnitCounts{Idle: idle, Neutral: neutral, Following: following}
	return snap
}
