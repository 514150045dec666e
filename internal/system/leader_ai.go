package system

import (
	"time"

	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/scripting"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

// LeaderParams configures computer-controlled leaders.
type LeaderParams struct {
	DetectionRadius float64
	WanderRadius    float64
	WanderInterval  time.Duration
	ArriveTolerance float64
	DisengageFactor float64
}

// LeaderView is what a Policy sees of one leader and its opponent.
type LeaderView struct {
	Name           string
	Mode           world.AIMode
	MyFollowers    int
	EnemyFollowers int
	HasEnemy       bool
	EnemyDist      float64
	CombatLocked   bool
}

// Policy decides the next AI mode from the current one.
type Policy interface {
	Decide(v LeaderView) world.AIMode
}

// RulePolicy is the built-in wander/hunt hysteresis: hunt starts only when
// the opponent is strictly inside the detection radius and strictly
// smaller; it stops beyond DisengageFactor × radius or on a tie.
type RulePolicy struct {
	DetectionRadius float64
	DisengageFactor float64
}

func (p RulePolicy) Decide(v LeaderView) world.AIMode {
	if !v.HasEnemy {
		return world.ModeWanderAndCollect
	}
	if v.Mode == world.ModeHunt {
		if v.EnemyDist > p.DetectionRadius*p.DisengageFactor || v.MyFollowers <= v.EnemyFollowers {
			return world.ModeWanderAndCollect
		}
		return world.ModeHunt
	}
	if v.EnemyDist < p.DetectionRadius && v.MyFollowers > v.EnemyFollowers {
		return world.ModeHunt
	}
	return world.ModeWanderAndCollect
}

// ScriptPolicy delegates the decision to the Lua leader_ai function.
// Script failures keep the current mode.
type ScriptPolicy struct {
	engine          *scripting.Engine
	detectionRadius float64
	disengageFactor float64
	log             *zap.Logger
}

func NewScriptPolicy(engine *scripting.Engine, params LeaderParams, log *zap.Logger) *ScriptPolicy {
	return &ScriptPolicy{
		engine:          engine,
		detectionRadius: params.DetectionRadius,
		disengageFactor: params.DisengageFactor,
		log:             log,
	}
}

func (p *ScriptPolicy) Decide(v LeaderView) world.AIMode {
	d, ok := p.engine.DecideLeader(scripting.LeaderAIContext{
		Leader:          v.Name,
		Mode:            v.Mode.String(),
		MyFollowers:     v.MyFollowers,
		EnemyFollowers:  v.EnemyFollowers,
		HasEnemy:        v.HasEnemy,
		EnemyDist:       v.EnemyDist,
		DetectionRadius: p.detectionRadius,
		DisengageFactor: p.disengageFactor,
		CombatLocked:    v.CombatLocked,
	})
	if !ok {
		return v.Mode
	}
	switch d.Mode {
	case world.ModeHunt.String():
		return world.ModeHunt
	case world.ModeWanderAndCollect.String():
		return world.ModeWanderAndCollect
	}
	p.log.Warn("unknown leader ai mode from script", zap.String("leader", v.Name), zap.String("mode", d.Mode))
	return v.Mode
}

// LeaderAISystem runs the decision loop of computer-controlled leaders:
// act on the current mode, then evaluate the transition.
// Phase 1 (Update).
type LeaderAISystem struct {
	state  *world.State
	nav    world.Navigator
	params LeaderParams
	policy Policy
	log    *zap.Logger
}

func NewLeaderAISystem(state *world.State, params LeaderParams, policy Policy, log *zap.Logger) *LeaderAISystem {
	return &LeaderAISystem{
		state:  state,
		nav:    state.Nav(),
		params: params,
		policy: policy,
		log:    log,
	}
}

func (s *LeaderAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// BindOpponents finds each AI leader's opponent by the enemy leader tag.
// Called once after scene setup. A leader without an opponent is logged
// and keeps wandering.
func (s *LeaderAISystem) BindOpponents() int {
	bound := 0
	for _, l := range s.state.ActiveLeaders() {
		if l.AI == nil {
			continue
		}
		opp := s.state.FindLeader(l.EnemyLeaderTag())
		if opp == nil {
			s.log.Error("no opposing leader found",
				zap.String("leader", l.Name), zap.Stringer("enemy_tag", l.EnemyLeaderTag()))
			continue
		}
		l.AI.Opponent = opp.ID
		bound++
	}
	return bound
}

func (s *LeaderAISystem) Update(dt time.Duration) {
	for _, l := range s.state.ActiveLeaders() {
		if l.AI == nil {
			continue
		}
		s.tick(l, dt)
	}
}

func (s *LeaderAISystem) tick(l *world.Leader, dt time.Duration) {
	ai := l.AI
	opp := s.state.ActiveLeader(ai.Opponent)
	if opp == nil {
		ai.Mode = world.ModeWanderAndCollect
	}

	switch ai.Mode {
	case world.ModeWanderAndCollect:
		s.wander(l, dt)
	case world.ModeHunt:
		if pos, ok := s.nav.Position(opp.ID); ok {
			s.nav.SetDestination(l.ID, pos)
		}
	}

	v := LeaderView{
		Name:         l.Name,
		Mode:         ai.Mode,
		MyFollowers:  l.Followers(),
		CombatLocked: l.CombatLocked,
	}
	if opp != nil {
		mine, ok1 := s.nav.Position(l.ID)
		theirs, ok2 := s.nav.Position(opp.ID)
		if ok1 && ok2 {
			v.HasEnemy = true
			v.EnemyFollowers = opp.Followers()
			v.EnemyDist = mine.Dist(theirs)
		}
	}
	next := s.policy.Decide(v)
	if next != ai.Mode {
		s.log.Debug("leader ai mode changed",
			zap.String("leader", l.Name), zap.Stringer("from", ai.Mode), zap.Stringer("to", next),
			zap.Float64("enemy_dist", v.EnemyDist))
		ai.Mode = next
	}
}

// wander picks a new random destination once the interval has elapsed or
// the current destination is reached.
func (s *LeaderAISystem) wander(l *world.Leader, dt time.Duration) {
	ai := l.AI
	ai.WanderTimer += dt
	arrived := s.nav.HasPath(l.ID) && s.nav.RemainingDistance(l.ID) < s.params.ArriveTolerance
	if ai.WanderTimer <= s.params.WanderInterval && !arrived {
		return
	}
	if pos, ok := s.nav.Position(l.ID); ok {
		if dest, ok := s.nav.RandomPoint(pos, s.params.WanderRadius); ok {
			s.nav.SetDestination(l.ID, dest)
		}
	}
	ai.WanderTimer = 0
}
