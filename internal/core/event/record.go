package event

import "github.com/crowdclash/server/internal/core/ecs"

// Record is the flat serializable form of a domain event, shared by the
// journal, the trace file and the observer feed.
type Record struct {
	Tick    uint64  `json:"tick"`
	Kind    string  `json:"kind"`
	Actor   string  `json:"actor,omitempty"`
	Target  string  `json:"target,omitempty"`
	Name    string  `json:"name,omitempty"`
	Count   int     `json:"count,omitempty"`
	Other   int     `json:"other,omitempty"`
	Outcome string  `json:"outcome,omitempty"`
	X       float64 `json:"x,omitempty"`
	Z       float64 `json:"z,omitempty"`
}

const (
	KindUnitSpawned    = "unit_spawned"
	KindUnitRecruited  = "unit_recruited"
	KindUnitTransfer   = "unit_transferred"
	KindCombatResolved = "combat_resolved"
	KindLeaderDefeated = "leader_defeated"
	KindCombatUnlocked = "combat_unlocked"
)

func handle(id ecs.EntityID) string {
	if id.IsZero() {
		return ""
	}
	return id.String()
}

func (e UnitSpawned) Record() Record {
	return Record{Tick: e.Tick, Kind: KindUnitSpawned, Actor: handle(e.Unit), X: e.X, Z: e.Z}
}

func (e UnitRecruited) Record() Record {
	r := Record{Tick: e.Tick, Kind: KindUnitRecruited, Actor: handle(e.Unit), Target: handle(e.Leader)}
	if e.Transferred {
		r.Kind = KindUnitTransfer
		r.Name = handle(e.From)
	}
	return r
}

func (e CombatResolved) Record() Record {
	return Record{
		Tick:    e.Tick,
		Kind:    KindCombatResolved,
		Actor:   handle(e.Initiator),
		Target:  handle(e.Opponent),
		Count:   e.MyCount,
		Other:   e.EnemyCount,
		Outcome: e.Outcome.String(),
	}
}

func (e LeaderDefeated) Record() Record {
	return Record{Tick: e.Tick, Kind: KindLeaderDefeated, Actor: handle(e.Leader), Name: e.Name, Count: e.Released}
}

func (e CombatUnlocked) Record() Record {
	return Record{Tick: e.Tick, Kind: KindCombatUnlocked, Actor: handle(e.A), Target: handle(e.B), Count: e.Unlocked}
}

// SubscribeRecords registers fn for every domain event type, converted to
// its Record form.
func SubscribeRecords(b *Bus, fn func(Record)) {
	Subscribe(b, func(e UnitSpawned) { fn(e.Record()) })
	Subscribe(b, func(e UnitRecruited) { fn(e.Record()) })
	Subscribe(b, func(e CombatResolved) { fn(e.Record()) })
	Subscribe(b, func(e LeaderDefeated) { fn(e.Record()) })
	Subscribe(b, func(e CombatUnlocked) { fn(e.Record()) })
}
