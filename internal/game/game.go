// Package game assembles a match from configuration and a scenario and
// drives its tick loop.
package game

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/crowdclash/server/internal/config"
	"github.com/crowdclash/server/internal/conflict"
	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/data"
	"github.com/crowdclash/server/internal/pool"
	"github.com/crowdclash/server/internal/scripting"
	"github.com/crowdclash/server/internal/system"
	"github.com/crowdclash/server/internal/world"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// carveRadius is cleared around leader starts and spawn points so scenario
// positions are always walkable.
const carveRadius = 3.0

// Options carries the optional sinks and match identity.
type Options struct {
	Match     uuid.UUID // uuid.Nil generates one
	Seed      int64     // 0 resolves via Seed(cfg)
	Journal   system.EventJournal
	Trace     system.RecordWriter
	Publisher system.SnapshotPublisher
}

// Game is one assembled match. It is not safe for concurrent use; Run and
// Step must be called from a single goroutine.
type Game struct {
	cfg      *config.Config
	scenario *data.Scenario
	log      *zap.Logger
	match    uuid.UUID
	seed     int64

	runner  *coresys.Runner
	bus     *event.Bus
	terrain *world.Terrain
	nav     *world.Nav
	state   *world.State
	pool    *pool.Pool
	engine  *conflict.Engine
	display *system.LogDisplay
	spawner *system.SpawnSystem
	journal *system.JournalSystem
	scripts *scripting.Engine

	leaders []*world.Leader // scenario order, kept after defeat
	teams   int             // teams with a leader at setup
	started time.Time
	stats   tally
}

// tally counts dispatched domain events for the summary.
type tally struct {
	spawned     int
	recruited   int
	transferred int
	combats     int
	ties        int
	defeated    []string
	released    int
}

// Seed returns the configured seed, or a clock-derived one when unset.
func Seed(cfg config.SimulationConfig) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// New builds the world, pool, engine and systems for one match.
func New(cfg *config.Config, sc *data.Scenario, opts Options, log *zap.Logger) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		scenario: sc,
		log:      log,
		match:    opts.Match,
		seed:     opts.Seed,
		runner:   coresys.NewRunner(),
		bus:      event.NewBus(),
	}
	if g.match == uuid.Nil {
		g.match = uuid.New()
	}
	if g.seed == 0 {
		g.seed = Seed(cfg.Simulation)
	}
	g.log = log.With(zap.String("match", g.match.String()))

	// 1. World: terrain, navigation, unit state
	g.terrain = world.NewTerrain(world.TerrainParams{
		HalfExtent:     cfg.Simulation.WorldSize,
		CellSize:       cfg.Terrain.CellSize,
		Seed:           cfg.Terrain.Seed,
		Frequency:      cfg.Terrain.Frequency,
		BlockThreshold: cfg.Terrain.BlockThreshold,
	})
	for _, l := range sc.Leaders {
		g.terrain.Carve(world.Vec2{X: l.X, Z: l.Z}, carveRadius)
	}
	for _, p := range sc.SpawnPoints {
		g.terrain.Carve(world.Vec2{X: p.X, Z: p.Z}, carveRadius)
	}
	blocked, total := g.terrain.Blocked()
	g.log.Info("terrain generated", zap.Int("blocked", blocked), zap.Int("cells", total))

	g.nav = world.NewNav(g.terrain, world.NewAOIGrid(cfg.Terrain.CellSize*4), rand.New(rand.NewSource(g.seed)))

	neutral, err := world.ParseColor(cfg.Unit.NeutralColor)
	if err != nil {
		return nil, fmt.Errorf("neutral color: %w", err)
	}
	unitParams := world.UnitParams{
		WanderRadius:    cfg.Unit.WanderRadius,
		ArriveTolerance: cfg.Unit.ArriveTolerance,
		Speed:           cfg.Unit.Speed,
		NeutralTint:     neutral,
		CategorySpeed:   make(map[world.Category]float64),
	}

	// 2. Resource pool
	specs := make([]pool.Spec, 0, len(cfg.Pool.Categories))
	for _, c := range cfg.Pool.Categories {
		cat, err := config.ResolveCategory(c.Name)
		if err != nil {
			return nil, fmt.Errorf("pool: %w", err)
		}
		specs = append(specs, pool.Spec{Category: cat, Capacity: c.Capacity})
		if c.Speed > 0 {
			unitParams.CategorySpeed[cat] = c.Speed
		}
	}
	g.state = world.NewState(ecs.NewWorld(), g.nav, unitParams, log)
	g.pool, err = pool.New(specs, g.state, log)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}

	// 3. Leaders and their controllers
	input := system.NewPlayerInputSystem(g.state)
	teams := make(map[world.Team]bool)
	for i, spec := range sc.LeaderSpecs(cfg.Leader.Speed, cfg.Leader.AISpeed) {
		l := g.state.AddLeader(spec)
		g.leaders = append(g.leaders, l)
		teams[l.Team] = true
		if l.Control == world.ControlPlayer {
			if pts := sc.Waypoints(i); len(pts) > 0 {
				input.Attach(l.ID, system.NewWaypointController(pts, cfg.Leader.ArriveTolerance, sc.Leaders[i].Loop))
			}
		}
		g.log.Info("leader placed",
			zap.String("leader", l.Name), zap.Stringer("tag", l.LeaderTag()), zap.Bool("ai", l.AI != nil))
	}
	g.teams = len(teams)

	// 4. Leader AI policy
	leaderParams := system.LeaderParams{
		DetectionRadius: cfg.Leader.DetectionRadius,
		WanderRadius:    cfg.Leader.WanderRadius,
		WanderInterval:  cfg.Leader.WanderInterval,
		ArriveTolerance: cfg.Leader.ArriveTolerance,
		DisengageFactor: cfg.Leader.DisengageFactor,
	}
	var policy system.Policy = system.RulePolicy{
		DetectionRadius: cfg.Leader.DetectionRadius,
		DisengageFactor: cfg.Leader.DisengageFactor,
	}
	if cfg.Scripting.LeaderAI {
		g.scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("lua engine: %w", err)
		}
		policy = system.NewScriptPolicy(g.scripts, leaderParams, log)
	}
	leaderAI := system.NewLeaderAISystem(g.state, leaderParams, policy, log)
	leaderAI.BindOpponents()

	// 5. Conflict resolution and spawner
	g.engine = conflict.NewEngine(g.state, g.pool, g.runner, cfg.Leader.CombatCooldown, g.bus, log)
	prox := world.NewProximity(g.state, cfg.Simulation.ContactRadius)

	spawnCat, err := config.ResolveCategory(cfg.Spawner.Category)
	if err != nil {
		return nil, fmt.Errorf("spawner: %w", err)
	}
	points := make([]system.SpawnPoint, 0, len(sc.SpawnPoints))
	for _, p := range sc.SpawnPoints {
		sp := system.SpawnPoint{Pos: world.Vec2{X: p.X, Z: p.Z}, Heading: -1}
		if p.Heading != nil {
			sp.Heading = normalizeDegrees(*p.Heading) * math.Pi / 180
		}
		points = append(points, sp)
	}
	g.spawner = system.NewSpawnSystem(g.state, g.pool, points, system.SpawnerParams{
		Category:   spawnCat,
		Interval:   cfg.Spawner.Interval,
		MaxNeutral: cfg.Spawner.MaxNeutral,
	}, rand.New(rand.NewSource(g.seed+1)), g.runner, g.bus, log)

	// 6. Register systems
	g.display = system.NewLogDisplay(log)
	g.runner.Register(system.NewEventDispatchSystem(g.bus))
	g.runner.Register(system.NewCombatLockSystem(g.engine))
	g.runner.Register(input)
	g.runner.Register(leaderAI)
	g.runner.Register(system.NewUnitAISystem(g.state))
	g.runner.Register(system.NewMovementSystem(g.nav))
	g.runner.Register(system.NewProximitySystem(prox))
	g.runner.Register(system.NewConflictSystem(g.state, prox, g.engine))
	g.runner.Register(g.spawner)
	g.runner.Register(system.NewHUDSystem(g.state, g.display))
	if opts.Publisher != nil {
		g.runner.Register(system.NewObserverSystem(g.state, g.bus, opts.Publisher, g.runner, g.match.String(), cfg.Observer.SnapshotEvery))
	}
	if opts.Journal != nil {
		g.journal = system.NewJournalSystem(g.bus, opts.Journal, g.match, g.runner, cfg.Journal.FlushInterval, log)
		g.runner.Register(g.journal)
	}
	if opts.Trace != nil {
		g.runner.Register(system.NewTraceSystem(g.bus, opts.Trace, log))
	}
	g.runner.Register(system.NewCleanupSystem(g.state.ECS(), log))

	g.subscribe()
	return g, nil
}

func (g *Game) subscribe() {
	event.Subscribe(g.bus, func(event.UnitSpawned) { g.stats.spawned++ })
	event.Subscribe(g.bus, func(e event.UnitRecruited) {
		if e.Transferred {
			g.stats.transferred++
		} else {
			g.stats.recruited++
		}
	})
	event.Subscribe(g.bus, func(e event.CombatResolved) {
		g.stats.combats++
		if e.Outcome == event.OutcomeTie {
			g.stats.ties++
		}
	})
	event.Subscribe(g.bus, func(e event.LeaderDefeated) {
		g.stats.defeated = append(g.stats.defeated, e.Name)
		g.stats.released += e.Released
	})
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func (g *Game) Match() uuid.UUID         { return g.match }
func (g *Game) Seed() int64              { return g.seed }
func (g *Game) Tick() uint64             { return g.runner.Tick() }
func (g *Game) State() *world.State      { return g.state }
func (g *Game) Pool() *pool.Pool         { return g.pool }
func (g *Game) Scenario() *data.Scenario { return g.scenario }

// Step advances the simulation by one fixed tick.
func (g *Game) Step() {
	if g.started.IsZero() {
		g.started = time.Now()
	}
	g.runner.Step(g.cfg.Simulation.TickRate)
}

// Done reports whether the match is over: the tick limit was reached or,
// for a scenario that started with several teams, at most one team still
// has an active leader.
func (g *Game) Done() bool {
	if limit := g.cfg.Simulation.MaxTicks; limit > 0 && g.runner.Tick() >= limit {
		return true
	}
	return g.teams > 1 && len(g.activeTeams()) <= 1
}

func (g *Game) activeTeams() []world.Team {
	seen := make(map[world.Team]bool)
	var out []world.Team
	for _, l := range g.state.ActiveLeaders() {
		if !seen[l.Team] {
			seen[l.Team] = true
			out = append(out, l.Team)
		}
	}
	return out
}

// Run steps the match until it is done or ctx is cancelled. In realtime
// mode one tick runs per tick_rate of wall time; otherwise ticks run back
// to back. Run always finishes the match before returning.
func (g *Game) Run(ctx context.Context) error {
	defer g.Finish()

	g.log.Info("match started",
		zap.String("scenario", g.scenario.Name),
		zap.Int64("seed", g.seed),
		zap.Duration("tick", g.cfg.Simulation.TickRate),
		zap.Bool("realtime", g.cfg.Simulation.Realtime))

	if !g.cfg.Simulation.Realtime {
		for !g.Done() {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.Step()
		}
		return nil
	}

	ticker := time.NewTicker(g.cfg.Simulation.TickRate)
	defer ticker.Stop()
	for !g.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			g.Step()
		}
	}
	return nil
}

// Finish dispatches events still pending on the bus so every sink sees
// the last tick, then flushes the journal. Safe to call more than once.
func (g *Game) Finish() {
	g.bus.SwapBuffers()
	g.bus.DispatchAll()
	if g.journal != nil {
		g.journal.Flush()
	}
}

// Close releases the scripting engine.
func (g *Game) Close() {
	if g.scripts != nil {
		g.scripts.Close()
		g.scripts = nil
	}
}
