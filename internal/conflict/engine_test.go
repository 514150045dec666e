package conflict

import (
	"math/rand"
	"testing"
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/core/event"
	"github.com/crowdclash/server/internal/pool"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

type testClock struct {
	tick uint64
	now  time.Duration
}

func (c *testClock) Tick() uint64       { return c.tick }
func (c *testClock) Now() time.Duration { return c.now }

type fixture struct {
	state  *world.State
	pool   *pool.Pool
	clock  *testClock
	bus    *event.Bus
	engine *Engine
	red    *world.Leader
	blue   *world.Leader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	w := ecs.NewWorld()
	terrain := world.NewTerrain(world.TerrainParams{HalfExtent: 50, CellSize: 2, BlockThreshold: 1})
	nav := world.NewNav(terrain, world.NewAOIGrid(4), rand.New(rand.NewSource(1)))
	state := world.NewState(w, nav, world.UnitParams{WanderRadius: 20, ArriveTolerance: 0.5, Speed: 3.5, NeutralTint: world.ColorWhite}, log)
	p, err := pool.New([]pool.Spec{{Category: world.CategoryUnit, Capacity: 40}}, state, log)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	clock := &testClock{tick: 1}
	bus := event.NewBus()
	f := &fixture{
		state:  state,
		pool:   p,
		clock:  clock,
		bus:    bus,
		engine: NewEngine(state, p, clock, 3*time.Second, bus, log),
	}
	f.red = state.AddLeader(world.LeaderSpec{Name: "red", Team: 1, Enemy: 2, Control: world.ControlPlayer, Speed: 5})
	f.blue = state.AddLeader(world.LeaderSpec{Name: "blue", Team: 2, Enemy: 1, Control: world.ControlAI, Pos: world.Vec2{X: 10}, Speed: 5})
	return f
}

func (f *fixture) spawn(t *testing.T) ecs.EntityID {
	t.Helper()
	id, ok := f.pool.Acquire(world.CategoryUnit, world.Vec2{X: 5}, 0)
	if !ok {
		t.Fatalf("pool exhausted")
	}
	return id
}

func (f *fixture) recruitN(t *testing.T, l *world.Leader, n int) []ecs.EntityID {
	t.Helper()
	var ids []ecs.EntityID
	for i := 0; i < n; i++ {
		id := f.spawn(t)
		if !f.engine.Recruit(l, id) {
			t.Fatalf("recruit %s into %s failed", id, l.Name)
		}
		ids = append(ids, id)
	}
	return ids
}

func checkAllegiance(t *testing.T, f *fixture) {
	t.Helper()
	seen := make(map[ecs.EntityID]string)
	for _, l := range f.state.ActiveLeaders() {
		for _, id := range l.Crowd().Members() {
			if other, dup := seen[id]; dup {
				t.Fatalf("unit %s in both %s and %s", id, other, l.Name)
			}
			seen[id] = l.Name
			u := f.state.Unit(id)
			if u == nil || u.State != world.UnitFollowing || u.Leader != l.ID {
				t.Fatalf("unit %s in %s's crowd is not following it: %+v", id, l.Name, u)
			}
			if u.Tag != l.FollowerTag() {
				t.Fatalf("unit %s carries tag %s, want %s", id, u.Tag, l.FollowerTag())
			}
		}
	}
}

func TestRecruitNeutralUnit(t *testing.T) {
	f := newFixture(t)
	id := f.spawn(t)

	f.engine.HandleProximity(f.red, world.ProximityEvent{Leader: f.red.ID, Other: id, Tag: world.NeutralTag})

	if f.red.Followers() != 1 || f.red.CrowdSize() != 2 {
		t.Fatalf("expected 1 follower and crowd size 2, got %d/%d", f.red.Followers(), f.red.CrowdSize())
	}
	u := f.state.Unit(id)
	if u.State != world.UnitFollowing || u.Leader != f.red.ID || u.Tint != f.red.Color {
		t.Fatalf("unexpected unit after recruit: %+v", u)
	}
	checkAllegiance(t, f)
}

func TestFollowerIsNotRecruitedAgain(t *testing.T) {
	f := newFixture(t)
	ids := f.recruitN(t, f.blue, 1)

	// Stale event: the unit was neutral when the overlap began.
	f.engine.HandleProximity(f.red, world.ProximityEvent{Leader: f.red.ID, Other: ids[0], Tag: world.NeutralTag})
	if f.blue.Followers() != 1 {
		t.Fatalf("expected unit to stay with blue, blue has %d", f.blue.Followers())
	}
	checkAllegiance(t, f)
}

func TestStrongerCrowdAbsorbsWeaker(t *testing.T) {
	f := newFixture(t)
	f.recruitN(t, f.red, 5)
	blueUnits := f.recruitN(t, f.blue, 3)

	var defeated []event.LeaderDefeated
	event.Subscribe(f.bus, func(ev event.LeaderDefeated) { defeated = append(defeated, ev) })

	f.engine.HandleProximity(f.red, world.ProximityEvent{Leader: f.red.ID, Other: f.blue.ID, Tag: f.blue.LeaderTag()})

	if f.red.Followers() != 8 {
		t.Fatalf("expected winner to hold 8 followers, got %d", f.red.Followers())
	}
	if f.blue.Active || f.blue.Followers() != 0 {
		t.Fatalf("expected loser deactivated with empty crowd, active=%v followers=%d", f.blue.Active, f.blue.Followers())
	}
	for _, id := range blueUnits {
		if u := f.state.Unit(id); u.Leader != f.red.ID {
			t.Fatalf("unit %s not transferred to winner", id)
		}
	}
	checkAllegiance(t, f)

	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	if len(defeated) != 1 || defeated[0].Leader != f.blue.ID || defeated[0].Released != 0 {
		t.Fatalf("unexpected defeat events: %+v", defeated)
	}
}

func TestWeakerInitiatorLoses(t *testing.T) {
	f := newFixture(t)
	f.recruitN(t, f.red, 2)
	blueUnits := f.recruitN(t, f.blue, 1)

	// Blue touches one of red's followers; the contact resolves to red.
	redUnit := f.red.Crowd().Members()[0]
	var resolved []event.CombatResolved
	event.Subscribe(f.bus, func(ev event.CombatResolved) { resolved = append(resolved, ev) })
	f.engine.HandleProximity(f.blue, world.ProximityEvent{Leader: f.blue.ID, Other: redUnit, Tag: f.red.FollowerTag()})
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	if len(resolved) != 1 || resolved[0].Outcome != event.OutcomeLoss || resolved[0].Initiator != f.blue.ID {
		t.Fatalf("expected one loss resolved from blue's side, got %+v", resolved)
	}
	if f.red.Followers() != 3 || f.blue.Active {
		t.Fatalf("expected red 3 followers and blue defeated, got %d active=%v", f.red.Followers(), f.blue.Active)
	}
	if u := f.state.Unit(blueUnits[0]); u.Leader != f.red.ID {
		t.Fatalf("blue's follower not transferred")
	}
	checkAllegiance(t, f)
}

func TestTieOnlyLocksThenCooldownReleases(t *testing.T) {
	f := newFixture(t)
	f.recruitN(t, f.red, 4)
	f.recruitN(t, f.blue, 4)

	if out := f.engine.CompareCrowds(f.red, f.blue); out != event.OutcomeTie {
		t.Fatalf("expected tie, got %s", out)
	}
	if f.red.Followers() != 4 || f.blue.Followers() != 4 {
		t.Fatalf("tie must not move units: %d/%d", f.red.Followers(), f.blue.Followers())
	}
	if !f.red.CombatLocked || !f.blue.CombatLocked {
		t.Fatalf("both sides must be locked after a tie")
	}

	// Re-entry while locked is ignored.
	f.recruitN(t, f.red, 1)
	f.engine.HandleProximity(f.red, world.ProximityEvent{Leader: f.red.ID, Other: f.blue.ID, Tag: f.blue.LeaderTag()})
	if !f.blue.Active || f.blue.Followers() != 4 {
		t.Fatalf("combat must not resolve while locked")
	}

	f.clock.now = 2900 * time.Millisecond
	if n := f.engine.ReleaseExpiredLocks(); n != 0 {
		t.Fatalf("locks released before cooldown: %d", n)
	}
	f.clock.now = 3 * time.Second
	if n := f.engine.ReleaseExpiredLocks(); n != 2 {
		t.Fatalf("expected both locks released, got %d", n)
	}
	if f.red.CombatLocked || f.blue.CombatLocked {
		t.Fatalf("locks still set after cooldown")
	}
	if f.engine.PendingLocks() != 0 {
		t.Fatalf("expected no pending locks")
	}
}

func TestUnlockSkipsDefeatedSide(t *testing.T) {
	f := newFixture(t)
	f.recruitN(t, f.red, 2)

	f.engine.CompareCrowds(f.red, f.blue)
	if f.blue.Active {
		t.Fatalf("blue should be defeated")
	}
	f.clock.now = 3 * time.Second
	if n := f.engine.ReleaseExpiredLocks(); n != 1 {
		t.Fatalf("expected only the winner unlocked, got %d", n)
	}
	if f.red.CombatLocked {
		t.Fatalf("winner still locked")
	}
}

func TestDefeatReleasesFollowersAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ids := f.recruitN(t, f.blue, 6)

	if !f.engine.Defeat(f.blue) {
		t.Fatalf("first defeat should report true")
	}
	st, _ := f.pool.Stats(world.CategoryUnit)
	if st.Active != 0 || st.Idle != 40 {
		t.Fatalf("expected all units back in pool, got %+v", st)
	}
	for _, id := range ids {
		if u := f.state.Unit(id); u.State != world.UnitIdle {
			t.Fatalf("unit %s not idle after defeat: %s", id, u.State)
		}
	}
	if f.blue.Followers() != 0 || f.blue.Active {
		t.Fatalf("defeated leader must be inactive with empty crowd")
	}
	if f.engine.Defeat(f.blue) {
		t.Fatalf("second defeat should be a no-op")
	}
	st, _ = f.pool.Stats(world.CategoryUnit)
	if st.Idle != 40 {
		t.Fatalf("double defeat changed the pool: %+v", st)
	}
}

func TestInactiveLeaderIgnoresEvents(t *testing.T) {
	f := newFixture(t)
	f.engine.Defeat(f.red)
	id := f.spawn(t)
	f.engine.HandleProximity(f.red, world.ProximityEvent{Leader: f.red.ID, Other: id, Tag: world.NeutralTag})
	if u := f.state.Unit(id); u.State != world.UnitNeutral {
		t.Fatalf("defeated leader recruited a unit")
	}
}
