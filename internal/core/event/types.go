package event

import "github.com/crowdclash/server/internal/core/ecs"

// Outcome of a crowd comparison, seen from the initiating leader.
type Outcome uint8

const (
	OutcomeTie Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "tie"
	}
}

// UnitSpawned is emitted when the spawner releases a pooled unit into the
// world as a neutral actor.
type UnitSpawned struct {
	Tick uint64
	Unit ecs.EntityID
	X, Z float64
}

// UnitRecruited is emitted for every recruitment, including units taken
// over from a defeated crowd (Transferred = true).
type UnitRecruited struct {
	Tick        uint64
	Unit        ecs.EntityID
	Leader      ecs.EntityID
	From        ecs.EntityID // previous leader for transfers, zero otherwise
	Transferred bool
}

// CombatResolved is emitted once per crowd comparison.
type CombatResolved struct {
	Tick       uint64
	Initiator  ecs.EntityID
	Opponent   ecs.EntityID
	MyCount    int
	EnemyCount int
	Outcome    Outcome
}

// LeaderDefeated is emitted the first (and only) time a leader is defeated.
type LeaderDefeated struct {
	Tick     uint64
	Leader   ecs.EntityID
	Name     string
	Released int
}

// CombatUnlocked is emitted when a combat-lock cooldown expires for a pair.
type CombatUnlocked struct {
	Tick     uint64
	A, B     ecs.EntityID
	Unlocked int // sides actually unlocked; defeated sides are skipped
}
