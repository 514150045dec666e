package system

import (
	"math"
	"math/rand"
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

// UnitSource hands out pooled units (pool.Pool).
type UnitSource interface {
	Acquire(cat world.Category, pos world.Vec2, heading float64) (ecs.EntityID, bool)
}

// SpawnPoint is a place where neutral units enter the world.
type SpawnPoint struct {
	Pos     world.Vec2
	Heading float64 // radians; negative picks a random heading
}

// SpawnerParams configures the population spawner.
type SpawnerParams struct {
	Category   world.Category
	Interval   time.Duration
	MaxNeutral int
}

// SpawnSystem keeps the map stocked with neutral units. Each cycle prunes
// tracked units that were recruited or returned to the pool, then acquires
// one unit if the tracked count is below the cap. The first cycle runs on
// the first tick. Phase 5 (PostUpdate).
type SpawnSystem struct {
	state   *world.State
	source  UnitSource
	points  []SpawnPoint
	params  SpawnerParams
	rng     *rand.Rand
	clock   coresys.Clock
	bus     *event.Bus
	log     *zap.Logger
	tracked []ecs.EntityID
	next    time.Duration
	started bool
}

func NewSpawnSystem(state *world.State, source UnitSource, points []SpawnPoint, params SpawnerParams, rng *rand.Rand, clock coresys.Clock, bus *event.Bus, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{
		state:  state,
		source: source,
		points: points,
		params: params,
		rng:    rng,
		clock:  clock,
		bus:    bus,
		log:    log,
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Tracked returns the number of neutral units currently tracked.
func (s *SpawnSystem) Tracked() int { return len(s.tracked) }

func (s *SpawnSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	if s.started && now < s.next {
		return
	}
	s.started = true
	s.next = now + s.params.Interval
	s.cycle()
}

func (s *SpawnSystem) cycle() {
	s.prune()
	if len(s.tracked) >= s.params.MaxNeutral {
		return
	}
	if len(s.points) == 0 {
		s.log.Error("no spawn points registered")
		return
	}
	sp := s.points[s.rng.Intn(len(s.points))]
	heading := sp.Heading
	if heading < 0 {
		heading = s.rng.Float64() * 2 * math.Pi
	}
	id, ok := s.source.Acquire(s.params.Category, sp.Pos, heading)
	if !ok {
		return
	}
	s.state.Relabel(id, world.NeutralTag)
	s.tracked = append(s.tracked, id)
	event.Emit(s.bus, event.UnitSpawned{Tick: s.clock.Tick(), Unit: id, X: sp.Pos.X, Z: sp.Pos.Z})
}

// prune drops entries that are gone, idle, or no longer neutral.
func (s *SpawnSystem) prune() {
	kept := s.tracked[:0]
	for _, id := range s.tracked {
		u := s.state.Unit(id)
		if u == nil || u.State != world.UnitNeutral || !u.Tag.IsNeutral() {
			continue
		}
		kept = append(kept, id)
	}
	s.tracked = kept
}
