package event

import (
	"testing"

	"github.com/crowdclash/server/internal/core/ecs"
)

func TestSubscribeRecordsCoversEveryEvent(t *testing.T) {
	b := NewBus()
	var kinds []string
	SubscribeRecords(b, func(r Record) { kinds = append(kinds, r.Kind) })

	a, c := ecs.NewEntityID(1, 1), ecs.NewEntityID(2, 1)
	Emit(b, UnitSpawned{Tick: 1, Unit: a})
	Emit(b, UnitRecruited{Tick: 2, Unit: a, Leader: c})
	Emit(b, UnitRecruited{Tick: 3, Unit: a, Leader: c, From: a, Transferred: true})
	Emit(b, CombatResolved{Tick: 3, Initiator: c, Opponent: a, MyCount: 5, EnemyCount: 3, Outcome: OutcomeWin})
	Emit(b, LeaderDefeated{Tick: 3, Leader: a, Name: "blue"})
	Emit(b, CombatUnlocked{Tick: 33, A: a, B: c, Unlocked: 1})
	b.SwapBuffers()
	b.DispatchAll()

	want := []string{KindUnitSpawned, KindUnitRecruited, KindUnitTransfer, KindCombatResolved, KindLeaderDefeated, KindCombatUnlocked}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("record %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestCombatRecordFields(t *testing.T) {
	r := CombatResolved{Tick: 9, Initiator: ecs.NewEntityID(4, 2), Opponent: ecs.NewEntityID(5, 1), MyCount: 2, EnemyCount: 7, Outcome: OutcomeLoss}.Record()
	if r.Actor != "e:4.2" || r.Target != "e:5.1" || r.Count != 2 || r.Other != 7 || r.Outcome != "loss" {
		t.Fatalf("unexpected record %+v", r)
	}
	if r := (UnitRecruited{Unit: ecs.NewEntityID(1, 1)}).Record(); r.Target != "" {
		t.Fatalf("zero leader handle should be empty, got %q", r.Target)
	}
}
