package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crowdclash/server/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crowdclash.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[simulation]
tick_rate = "50ms"
max_ticks = 1200
realtime = false

[[pool.categories]]
name = "unit"
capacity = 40

[[pool.categories]]
name = "runner"
capacity = 10
speed = 6.0

[leader]
combat_cooldown = "5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.TickRate != 50*time.Millisecond || cfg.Simulation.MaxTicks != 1200 || cfg.Simulation.Realtime {
		t.Fatalf("simulation not overridden: %+v", cfg.Simulation)
	}
	if len(cfg.Pool.Categories) != 2 || cfg.Pool.Categories[1].Speed != 6 {
		t.Fatalf("unexpected categories %+v", cfg.Pool.Categories)
	}
	if cfg.Leader.CombatCooldown != 5*time.Second || cfg.Leader.DetectionRadius != 20 {
		t.Fatalf("leader section: %+v", cfg.Leader)
	}
	if cfg.Spawner.MaxNeutral != 50 {
		t.Fatalf("untouched section should keep defaults, got %d", cfg.Spawner.MaxNeutral)
	}
}

func TestUnknownCategorySuggestsName(t *testing.T) {
	path := writeConfig(t, `
[[pool.categories]]
name = "runer"
capacity = 10
`)
	_, err := Load(path)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "runner"`) {
		t.Fatalf("expected suggestion in %q", err)
	}
}

func TestResolveCategory(t *testing.T) {
	if c, err := ResolveCategory("unit"); err != nil || c != world.CategoryUnit {
		t.Fatalf("unit: %v %v", c, err)
	}
	_, err := ResolveCategory("dragon")
	if !errors.Is(err, ErrUnknownCategory) || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("far name should list known names, got %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Leader.DetectionRadius = 0
	cfg.Leader.DisengageFactor = 0.5
	cfg.Spawner.Category = "runner"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"leader.detection_radius", "disengage_factor", "has no pool"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CROWDCLASH_CONFIG", "/tmp/other.toml")
	if Path() != "/tmp/other.toml" {
		t.Fatalf("env override ignored")
	}
	t.Setenv("CROWDCLASH_CONFIG", "")
	if Path() != DefaultPath {
		t.Fatalf("expected default path")
	}
}
