package world

import (
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
)

// Control selects how a leader is steered.
type Control uint8

const (
	ControlPlayer Control = iota // external input (see system.Controller)
	ControlAI                    // leader AI decision loop
)

// AIMode is the leader AI behaviour mode.
type AIMode uint8

const (
	ModeWanderAndCollect AIMode = iota
	ModeHunt
)

func (m AIMode) String() string {
	if m == ModeHunt {
		return "hunt"
	}
	return "wander_and_collect"
}

// AIState is the decision-loop state of a computer-controlled leader.
type AIState struct {
	Mode        AIMode
	WanderTimer time.Duration
	Opponent    ecs.EntityID // tracked opposing leader, zero if none was found
}

// Leader is a non-pooled actor owning a crowd. Leaders are created at scene
// setup and, once defeated, never re-enter the simulation.
type Leader struct {
	ID           ecs.EntityID
	Name         string
	Team         Team
	Enemy        Team
	Color        Color
	Control      Control
	Active       bool
	CombatLocked bool
	AI           *AIState // nil for player-controlled leaders

	crowd Crowd
}

func (l *Leader) LeaderTag() Tag        { return LeaderTag(l.Team) }
func (l *Leader) FollowerTag() Tag      { return FollowerTag(l.Team) }
func (l *Leader) EnemyLeaderTag() Tag   { return LeaderTag(l.Enemy) }
func (l *Leader) EnemyFollowerTag() Tag { return FollowerTag(l.Enemy) }

func (l *Leader) Crowd() *Crowd { return &l.crowd }

// Followers is the number of units in the crowd, the leader excluded.
func (l *Leader) Followers() int { return l.crowd.Len() }

// CrowdSize is the count shown to observers: followers plus the leader.
func (l *Leader) CrowdSize() int { return l.crowd.Len() + 1 }

// LeaderSpec describes a leader created at scene setup.
type LeaderSpec struct {
	Name    string
	Team    Team
	Enemy   Team
	Color   Color
	Control Control
	Pos     Vec2
	Heading float64
	Speed   float64
}
