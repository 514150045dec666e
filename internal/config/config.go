package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
	"github.com/crowdclash/server/internal/world"
)

// ErrUnknownCategory is returned for a pool or spawner category that is
// not a known unit category.
var ErrUnknownCategory = errors.New("unknown unit category")

// DefaultPath is used when CROWDCLASH_CONFIG is unset.
const DefaultPath = "config/crowdclash.toml"

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Pool       PoolConfig       `toml:"pool"`
	Spawner    SpawnerConfig    `toml:"spawner"`
	Unit       UnitConfig       `toml:"unit"`
	Leader     LeaderConfig     `toml:"leader"`
	Terrain    TerrainConfig    `toml:"terrain"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Journal    JournalConfig    `toml:"journal"`
	Trace      TraceConfig      `toml:"trace"`
	Observer   ObserverConfig   `toml:"observer"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	MaxTicks      uint64        `toml:"max_ticks"` // 0 = run until one team remains or shutdown
	Realtime      bool          `toml:"realtime"`  // false = step as fast as possible
	Seed          int64         `toml:"seed"`      // 0 = seed from the clock
	Scenario      string        `toml:"scenario"`
	WorldSize     float64       `toml:"world_size"` // half extent of the square map
	ContactRadius float64       `toml:"contact_radius"`
}

type CategoryConfig struct {
	Name     string  `toml:"name"`
	Capacity int     `toml:"capacity"`
	Speed    float64 `toml:"speed"` // 0 = unit.speed
}

type PoolConfig struct {
	Categories []CategoryConfig `toml:"categories"`
}

type SpawnerConfig struct {
	Interval   time.Duration `toml:"interval"`
	MaxNeutral int           `toml:"max_neutral"`
	Category   string        `toml:"category"`
}

type UnitConfig struct {
	WanderRadius    float64 `toml:"wander_radius"`
	ArriveTolerance float64 `toml:"arrive_tolerance"`
	Speed           float64 `toml:"speed"`
	NeutralColor    string  `toml:"neutral_color"`
}

type LeaderConfig struct {
	DetectionRadius float64       `toml:"detection_radius"`
	WanderRadius    float64       `toml:"wander_radius"`
	WanderInterval  time.Duration `toml:"wander_interval"`
	ArriveTolerance float64       `toml:"arrive_tolerance"`
	Speed           float64       `toml:"speed"`    // player-controlled
	AISpeed         float64       `toml:"ai_speed"` // computer-controlled
	CombatCooldown  time.Duration `toml:"combat_cooldown"`
	DisengageFactor float64       `toml:"disengage_factor"`
}

type TerrainConfig struct {
	Seed           int64   `toml:"seed"`
	Frequency      float64 `toml:"frequency"`
	BlockThreshold float64 `toml:"block_threshold"` // >= 1 disables obstacles
	CellSize       float64 `toml:"cell_size"`
}

type ScriptingConfig struct {
	Dir      string `toml:"dir"`
	LeaderAI bool   `toml:"leader_ai"` // decide leader AI transitions in Lua
}

type JournalConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the journal
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"`
}

type TraceConfig struct {
	Path string `toml:"path"` // empty disables tracing; "{match}" is replaced by the match id
}

type ObserverConfig struct {
	Enabled       bool   `toml:"enabled"`
	BindAddress   string `toml:"bind_address"`
	SnapshotEvery int    `toml:"snapshot_every"` // ticks
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config path from CROWDCLASH_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("CROWDCLASH_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:      100 * time.Millisecond,
			Realtime:      true,
			Scenario:      "data/scenario.yaml",
			WorldSize:     60,
			ContactRadius: 2.0,
		},
		Pool: PoolConfig{
			Categories: []CategoryConfig{{Name: "unit", Capacity: 80}},
		},
		Spawner: SpawnerConfig{
			Interval:   3 * time.Second,
			MaxNeutral: 50,
			Category:   "unit",
		},
		Unit: UnitConfig{
			WanderRadius:    20,
			ArriveTolerance: 0.5,
			Speed:           3.5,
			NeutralColor:    "#ffffff",
		},
		Leader: LeaderConfig{
			DetectionRadius: 20,
			WanderRadius:    30,
			WanderInterval:  7 * time.Second,
			ArriveTolerance: 1.0,
			Speed:           5.0,
			AISpeed:         3.5,
			CombatCooldown:  3 * time.Second,
			DisengageFactor: 1.5,
		},
		Terrain: TerrainConfig{
			Seed:           1,
			Frequency:      0.05,
			BlockThreshold: 0.72,
			CellSize:       2,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Journal: JournalConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   2 * time.Second,
		},
		Observer: ObserverConfig{
			BindAddress:   "127.0.0.1:7080",
			SnapshotEvery: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks ranges and resolves category names.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("simulation.tick_rate", float64(c.Simulation.TickRate))
	positive("simulation.world_size", c.Simulation.WorldSize)
	positive("simulation.contact_radius", c.Simulation.ContactRadius)
	positive("spawner.interval", float64(c.Spawner.Interval))
	positive("unit.wander_radius", c.Unit.WanderRadius)
	positive("unit.arrive_tolerance", c.Unit.ArriveTolerance)
	positive("unit.speed", c.Unit.Speed)
	positive("leader.detection_radius", c.Leader.DetectionRadius)
	positive("leader.wander_radius", c.Leader.WanderRadius)
	positive("leader.wander_interval", float64(c.Leader.WanderInterval))
	positive("leader.arrive_tolerance", c.Leader.ArriveTolerance)
	positive("leader.speed", c.Leader.Speed)
	positive("leader.ai_speed", c.Leader.AISpeed)
	positive("leader.combat_cooldown", float64(c.Leader.CombatCooldown))
	positive("terrain.cell_size", c.Terrain.CellSize)
	if c.Leader.DisengageFactor < 1 {
		errs = append(errs, fmt.Errorf("leader.disengage_factor must be at least 1, got %v", c.Leader.DisengageFactor))
	}
	if c.Spawner.MaxNeutral < 0 {
		errs = append(errs, fmt.Errorf("spawner.max_neutral must not be negative, got %d", c.Spawner.MaxNeutral))
	}
	if c.Journal.DSN != "" {
		positive("journal.flush_interval", float64(c.Journal.FlushInterval))
		if c.Journal.MaxOpenConns < 1 {
			errs = append(errs, fmt.Errorf("journal.max_open_conns must be at least 1"))
		}
	}

	if len(c.Pool.Categories) == 0 {
		errs = append(errs, errors.New("pool.categories is empty"))
	}
	seen := make(map[string]bool)
	for _, cat := range c.Pool.Categories {
		if _, err := ResolveCategory(cat.Name); err != nil {
			errs = append(errs, fmt.Errorf("pool.categories: %w", err))
			continue
		}
		if seen[cat.Name] {
			errs = append(errs, fmt.Errorf("pool.categories: %q listed twice", cat.Name))
		}
		seen[cat.Name] = true
		if cat.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("pool.categories: %q capacity must be positive, got %d", cat.Name, cat.Capacity))
		}
	}
	if _, err := ResolveCategory(c.Spawner.Category); err != nil {
		errs = append(errs, fmt.Errorf("spawner.category: %w", err))
	} else if !seen[c.Spawner.Category] {
		errs = append(errs, fmt.Errorf("spawner.category %q has no pool", c.Spawner.Category))
	}
	if _, err := world.ParseColor(c.Unit.NeutralColor); err != nil {
		errs = append(errs, fmt.Errorf("unit.neutral_color: %w", err))
	}
	return errors.Join(errs...)
}

// ResolveCategory maps a configured name to a unit category. Unknown names
// wrap ErrUnknownCategory with the closest known name, if any is close.
func ResolveCategory(name string) (world.Category, error) {
	if c, ok := world.CategoryByName(name); ok {
		return c, nil
	}
	if s := suggest(name, world.CategoryNames()); s != "" {
		return world.CategoryNone, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownCategory, name, s)
	}
	return world.CategoryNone, fmt.Errorf("%w %q (known: %s)", ErrUnknownCategory, name, strings.Join(world.CategoryNames(), ", "))
}

func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	lower := strings.ToLower(name)
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(lower, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func levenshteinLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
