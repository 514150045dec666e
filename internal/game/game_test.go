package game

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crowdclash/server/internal/config"
	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/data"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

const testScenario = `
name: arena
teams:
  - {id: 1, name: crimson, color: "#e53935"}
  - {id: 2, name: azure, color: "#1e88e5"}
leaders:
  - name: vanguard
    team: 1
    enemy: 2
    control: player
    x: -15
    z: -15
    loop: true
    waypoints:
      - {x: 15, z: -15}
      - {x: 15, z: 15}
      - {x: -15, z: 15}
      - {x: -15, z: -15}
  - {name: warden, team: 2, enemy: 1, control: ai, x: 15, z: 15}
spawn_points:
  - {x: 0, z: 0}
  - {x: -10, z: 10}
  - {x: 10, z: -10, heading: -90}
`

func newTestGame(t *testing.T, scenario string, mutate func(*config.Config)) *Game {
	t.Helper()
	cfg := config.Defaults()
	cfg.Simulation.Realtime = false
	cfg.Simulation.Seed = 42
	cfg.Simulation.WorldSize = 30
	cfg.Spawner.Interval = 200 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	sc, err := data.ParseScenario([]byte(scenario))
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	g, err := New(cfg, sc, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func checkInvariants(t *testing.T, g *Game) {
	t.Helper()
	poolIdle := 0
	for _, cat := range g.pool.Categories() {
		st, _ := g.pool.Stats(cat)
		if st.Idle+st.Active != st.Capacity {
			t.Fatalf("tick %d: pool %s not conserved: %+v", g.Tick(), cat, st)
		}
		poolIdle += st.Idle
	}
	idle, _, _ := g.state.Counts()
	if idle != poolIdle {
		t.Fatalf("tick %d: %d idle units but pool holds %d", g.Tick(), idle, poolIdle)
	}

	owners := make(map[ecs.EntityID]int)
	for _, l := range g.leaders {
		if !l.Active {
			if l.Followers() != 0 {
				t.Fatalf("tick %d: defeated leader %s still has %d followers", g.Tick(), l.Name, l.Followers())
			}
			continue
		}
		for _, id := range l.Crowd().Members() {
			owners[id]++
			u := g.state.Unit(id)
			if u == nil || u.State != world.UnitFollowing || u.Leader != l.ID {
				t.Fatalf("tick %d: crowd of %s holds a unit not following it: %+v", g.Tick(), l.Name, u)
			}
			if u.Tag != l.FollowerTag() {
				t.Fatalf("tick %d: follower of %s tagged %s", g.Tick(), l.Name, u.Tag)
			}
		}
		if n, ok := g.display.Last(l.ID); ok && n != l.Followers()+1 {
			t.Fatalf("tick %d: display shows %d for %s, want %d", g.Tick(), n, l.Name, l.Followers()+1)
		}
	}
	g.state.AllUnits(func(u *world.Unit) {
		if u.State == world.UnitFollowing && owners[u.ID] != 1 {
			t.Fatalf("tick %d: following unit %s is in %d crowds", g.Tick(), u.ID, owners[u.ID])
		}
	})
}

func TestMatchKeepsInvariantsEveryTick(t *testing.T) {
	g := newTestGame(t, testScenario, func(c *config.Config) { c.Terrain.BlockThreshold = 1 })
	for i := 0; i < 3000 && !g.Done(); i++ {
		g.Step()
		checkInvariants(t, g)
	}
	g.Finish()
	s := g.Summary()
	if s.Spawned == 0 {
		t.Fatalf("spawner never released a unit")
	}
	if s.Recruited == 0 {
		t.Fatalf("expected at least one recruitment in %d ticks", s.Ticks)
	}
}

func TestSpawnerRespectsCap(t *testing.T) {
	g := newTestGame(t, testScenario, func(c *config.Config) {
		c.Spawner.MaxNeutral = 5
		c.Spawner.Interval = 100 * time.Millisecond
		c.Simulation.ContactRadius = 0.01
	})
	for i := 0; i < 100; i++ {
		g.Step()
		if g.spawner.Tracked() > 5 {
			t.Fatalf("tick %d: tracking %d neutral units, cap is 5", g.Tick(), g.spawner.Tracked())
		}
	}
	if g.spawner.Tracked() != 5 {
		t.Fatalf("expected the cap to be reached, tracking %d", g.spawner.Tracked())
	}
}

func TestDefeatEndsMatch(t *testing.T) {
	g := newTestGame(t, `
name: duel
teams:
  - {id: 1, name: crimson, color: "#e53935"}
  - {id: 2, name: azure, color: "#1e88e5"}
leaders:
  - {name: vanguard, team: 1, enemy: 2, control: player, x: 0, z: 0}
  - {name: warden, team: 2, enemy: 1, control: ai, x: 1, z: 0}
spawn_points:
  - {x: -20, z: -20}
`, func(c *config.Config) {
		c.Terrain.BlockThreshold = 1
		c.Spawner.MaxNeutral = 0
	})
	red := g.leaders[0]
	for i := 0; i < 3; i++ {
		id, ok := g.pool.Acquire(world.CategoryUnit, world.Vec2{X: -20, Z: 20}, 0)
		if !ok {
			t.Fatalf("pool exhausted")
		}
		if !g.engine.Recruit(red, id) {
			t.Fatalf("recruit %d failed", i)
		}
	}

	g.Step()
	if !g.Done() {
		t.Fatalf("expected the match to end after the first contact")
	}
	g.Finish()
	s := g.Summary()
	if s.Winner != "Crimson" {
		t.Fatalf("expected Crimson to win, got %q", s.Winner)
	}
	if s.Combats != 1 || len(s.Defeated) != 1 || s.Defeated[0] != "warden" {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.Leaders[0].Crowd != 4 || s.Leaders[1].Active {
		t.Fatalf("unexpected leaders %+v", s.Leaders)
	}
	out := s.String()
	for _, want := range []string{"winner: Crimson", "defeated", "1 combat "} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunStopsAtTickLimit(t *testing.T) {
	g := newTestGame(t, testScenario, func(c *config.Config) { c.Simulation.MaxTicks = 50 })
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if g.Tick() != 50 {
		t.Fatalf("expected 50 ticks, ran %d", g.Tick())
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	g := newTestGame(t, testScenario, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if g.Tick() != 0 {
		t.Fatalf("cancelled run should not step, ran %d ticks", g.Tick())
	}
}

func TestScriptedLeaderAI(t *testing.T) {
	g := newTestGame(t, testScenario, func(c *config.Config) {
		c.Scripting.LeaderAI = true
		c.Scripting.Dir = "../../scripts"
		c.Simulation.MaxTicks = 200
	})
	if g.scripts == nil {
		t.Fatalf("expected the lua engine to be loaded")
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	checkInvariants(t, g)
}

func TestNormalizeDegrees(t *testing.T) {
	for in, want := range map[float64]float64{0: 0, 90: 90, -90: 270, 360: 0, 725: 5} {
		if got := normalizeDegrees(in); got != want {
			t.Fatalf("normalizeDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}
