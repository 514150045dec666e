package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for leader decision scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// LeaderAIContext holds pre-packed data for one leader decision.
// Distances are in world units; counts exclude the leaders themselves.
type LeaderAIContext struct {
	Leader          string
	Mode            string // "wander_and_collect" or "hunt"
	MyFollowers     int
	EnemyFollowers  int
	HasEnemy        bool
	EnemyDist       float64
	DetectionRadius float64
	DisengageFactor float64
	CombatLocked    bool
}

// LeaderDecision is returned by the Lua leader_ai function.
type LeaderDecision struct {
	Mode string
}

// DecideLeader calls Lua leader_ai(ctx). ok is false when the function is
// missing or fails; callers keep the current mode in that case.
func (e *Engine) DecideLeader(ctx LeaderAIContext) (LeaderDecision, bool) {
	fn := e.vm.GetGlobal("leader_ai")
	if fn == lua.LNil {
		e.log.Error("lua function leader_ai not found")
		return LeaderDecision{Mode: ctx.Mode}, false
	}

	t := e.vm.NewTable()
	t.RawSetString("leader", lua.LString(ctx.Leader))
	t.RawSetString("mode", lua.LString(ctx.Mode))
	t.RawSetString("my_followers", lua.LNumber(ctx.MyFollowers))
	t.RawSetString("enemy_followers", lua.LNumber(ctx.EnemyFollowers))
	t.RawSetString("has_enemy", lua.LBool(ctx.HasEnemy))
	t.RawSetString("enemy_dist", lua.LNumber(ctx.EnemyDist))
	t.RawSetString("detection_radius", lua.LNumber(ctx.DetectionRadius))
	t.RawSetString("disengage_factor", lua.LNumber(ctx.DisengageFactor))
	t.RawSetString("combat_locked", lua.LBool(ctx.CombatLocked))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua leader_ai error", zap.Error(err), zap.String("leader", ctx.Leader))
		return LeaderDecision{Mode: ctx.Mode}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua leader_ai returned no table", zap.String("leader", ctx.Leader))
		return LeaderDecision{Mode: ctx.Mode}, false
	}
	return LeaderDecision{Mode: lStr(rt, "mode")}, true
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
