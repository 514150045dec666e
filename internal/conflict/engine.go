// Package conflict implements recruitment and crowd-vs-crowd resolution
// for leaders.
package conflict

import (
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/core/event"
	"github.com/crowdclash/server/internal/core/sched"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

// Releaser returns units to their pool (pool.Pool).
type Releaser interface {
	Release(cat world.Category, id ecs.EntityID) bool
}

// Engine is the conflict resolution engine shared by all leaders. Every
// operation runs synchronously on the game loop; the transfer between two
// crowds is the only call that spans two leaders' state.
type Engine struct {
	state    *world.State
	pool     Releaser
	clock    coresys.Clock
	cooldown time.Duration
	locks    *sched.Scheduler[sched.Pair]
	bus      *event.Bus
	log      *zap.Logger
}

func NewEngine(state *world.State, pool Releaser, clock coresys.Clock, cooldown time.Duration, bus *event.Bus, log *zap.Logger) *Engine {
	return &Engine{
		state:    state,
		pool:     pool,
		clock:    clock,
		cooldown: cooldown,
		locks:    sched.New[sched.Pair](),
		bus:      bus,
		log:      log,
	}
}

// HandleProximity processes one "entered" event for leader l to
// completion. The other actor is re-classified from current state, since
// an earlier event this tick may already have recruited or released it.
func (e *Engine) HandleProximity(l *world.Leader, ev world.ProximityEvent) {
	if l == nil || !l.Active {
		return
	}
	tag, active := e.state.TagOf(ev.Other)
	if !active {
		return
	}

	if tag.IsNeutral() {
		if u := e.state.Unit(ev.Other); u != nil && u.State == world.UnitNeutral {
			e.Recruit(l, ev.Other)
		}
		return
	}

	if tag != l.EnemyLeaderTag() && tag != l.EnemyFollowerTag() {
		return
	}
	enemy := e.resolveLeader(ev.Other, tag)
	if enemy == nil {
		e.log.Warn("contact with enemy not resolvable to a leader",
			zap.String("leader", l.Name), zap.Stringer("other", ev.Other), zap.Stringer("tag", tag))
		return
	}
	if l.CombatLocked || enemy.CombatLocked {
		return
	}
	e.CompareCrowds(l, enemy)
}

func (e *Engine) resolveLeader(other ecs.EntityID, tag world.Tag) *world.Leader {
	if tag.Role == world.RoleLeader {
		return e.state.ActiveLeader(other)
	}
	u := e.state.Unit(other)
	if u == nil || u.State != world.UnitFollowing {
		return nil
	}
	return e.state.ActiveLeader(u.Leader)
}

// Recruit converts a neutral unit into a follower of l. There is no cap on
// crowd size.
func (e *Engine) Recruit(l *world.Leader, unit ecs.EntityID) bool {
	if !e.state.Follow(unit, l) {
		return false
	}
	l.Crowd().Add(unit)
	e.state.Relabel(unit, l.FollowerTag())
	event.Emit(e.bus, event.UnitRecruited{
		Tick:   e.clock.Tick(),
		Unit:   unit,
		Leader: l.ID,
	})
	e.log.Debug("unit recruited", zap.String("leader", l.Name), zap.Stringer("unit", unit),
		zap.Int("crowd", l.CrowdSize()))
	return true
}

// transfer moves every follower of from into to's crowd. The source crowd
// is drained into a temporary slice first, so membership changes never
// touch a collection being iterated.
func (e *Engine) transfer(from, to *world.Leader) int {
	moved := from.Crowd().Drain()
	for _, id := range moved {
		e.state.Follow(id, to)
		to.Crowd().Add(id)
		e.state.Relabel(id, to.FollowerTag())
		event.Emit(e.bus, event.UnitRecruited{
			Tick:        e.clock.Tick(),
			Unit:        id,
			Leader:      to.ID,
			From:        from.ID,
			Transferred: true,
		})
	}
	return len(moved)
}

// CompareCrowds resolves an encounter from me's side. Both combat-locks are
// set immediately and released together once the cooldown expires. The
// larger crowd (followers only) absorbs the smaller and the loser is
// defeated; equal crowds change nothing beyond the locks.
func (e *Engine) CompareCrowds(me, enemy *world.Leader) event.Outcome {
	me.CombatLocked = true
	enemy.CombatLocked = true

	myCount := me.Followers()
	enemyCount := enemy.Followers()

	outcome := event.OutcomeTie
	switch {
	case myCount > enemyCount:
		outcome = event.OutcomeWin
		e.log.Info("combat won",
			zap.String("winner", me.Name), zap.String("loser", enemy.Name),
			zap.Int("winner_followers", myCount), zap.Int("loser_followers", enemyCount))
		e.transfer(enemy, me)
		e.Defeat(enemy)
	case myCount < enemyCount:
		outcome = event.OutcomeLoss
		e.log.Info("combat lost",
			zap.String("winner", enemy.Name), zap.String("loser", me.Name),
			zap.Int("winner_followers", enemyCount), zap.Int("loser_followers", myCount))
		e.transfer(me, enemy)
		e.Defeat(me)
	default:
		e.log.Debug("combat tied", zap.String("a", me.Name), zap.String("b", enemy.Name),
			zap.Int("followers", myCount))
	}

	e.locks.After(sched.NewPair(me.ID, enemy.ID), e.clock.Now(), e.cooldown)
	event.Emit(e.bus, event.CombatResolved{
		Tick:       e.clock.Tick(),
		Initiator:  me.ID,
		Opponent:   enemy.ID,
		MyCount:    myCount,
		EnemyCount: enemyCount,
		Outcome:    outcome,
	})
	return outcome
}

// Defeat returns every remaining follower to its pool, clears the crowd
// and permanently deactivates the leader. A second call is a no-op.
func (e *Engine) Defeat(l *world.Leader) bool {
	if l == nil || !l.Active {
		return false
	}
	released := 0
	for _, id := range l.Crowd().Drain() {
		cat := world.CategoryUnit
		if u := e.state.Unit(id); u != nil && u.Category != world.CategoryNone {
			cat = u.Category
		}
		if e.pool.Release(cat, id) {
			released++
		}
	}
	e.state.DeactivateLeader(l)
	e.log.Info("leader defeated", zap.String("leader", l.Name), zap.Int("released", released))
	event.Emit(e.bus, event.LeaderDefeated{
		Tick:     e.clock.Tick(),
		Leader:   l.ID,
		Name:     l.Name,
		Released: released,
	})
	return true
}

// ReleaseExpiredLocks clears combat-locks whose cooldown has expired.
// A side that has been defeated in the meantime is skipped.
func (e *Engine) ReleaseExpiredLocks() int {
	total := 0
	for _, p := range e.locks.PopDue(e.clock.Now()) {
		n := 0
		for _, id := range [2]ecs.EntityID{p.A, p.B} {
			if l := e.state.ActiveLeader(id); l != nil {
				l.CombatLocked = false
				n++
			}
		}
		total += n
		event.Emit(e.bus, event.CombatUnlocked{Tick: e.clock.Tick(), A: p.A, B: p.B, Unlocked: n})
	}
	return total
}

// PendingLocks returns the number of pairs still cooling down.
func (e *Engine) PendingLocks() int { return e.locks.Len() }
