// Package pool owns fixed-capacity queues of reusable units keyed by
// category. It is the only place units are instantiated, and after startup
// Acquire and Release are the only lifecycle operations.
package pool

import (
	"fmt"

	"github.com/crowdclash/server/internal/core/ecs"
	"github.com/crowdclash/server/internal/world"
	"go.uber.org/zap"
)

// Lifecycle is implemented by the owner of unit state (world.State).
type Lifecycle interface {
	NewUnit(cat world.Category) ecs.EntityID
	Place(id ecs.EntityID, pos world.Vec2, heading float64)
	SetActive(id ecs.EntityID, active bool)
	OnObjectSpawn(id ecs.EntityID)
}

// Spec declares one category and its fixed capacity.
type Spec struct {
	Category world.Category
	Capacity int
}

// Stats is a point-in-time view of one category.
type Stats struct {
	Capacity int
	Idle     int
	Active   int
}

// queue is a FIFO ring sized to the category capacity; it never grows.
type queue struct {
	buf  []ecs.EntityID
	head int
	n    int
}

func (q *queue) push(id ecs.EntityID) bool {
	if q.n == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = id
	q.n++
	return true
}

func (q *queue) pop() (ecs.EntityID, bool) {
	if q.n == 0 {
		return 0, false
	}
	id := q.buf[q.head]
	q.buf[q.head] = 0
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return id, true
}

type category struct {
	capacity int
	idle     queue
	members  map[ecs.EntityID]bool // true while checked in
}

// Pool is the resource pool.
// Accessed only from the game loop goroutine, no locks needed.
type Pool struct {
	lc    Lifecycle
	cats  map[world.Category]*category
	order []world.Category
	log   *zap.Logger
}

// New pre-populates every category to its capacity. All units start idle.
func New(specs []Spec, lc Lifecycle, log *zap.Logger) (*Pool, error) {
	p := &Pool{
		lc:   lc,
		cats: make(map[world.Category]*category, len(specs)),
		log:  log,
	}
	for _, s := range specs {
		if s.Category == world.CategoryNone {
			return nil, fmt.Errorf("pool: category must be set")
		}
		if s.Capacity <= 0 {
			return nil, fmt.Errorf("pool %s: capacity must be positive, got %d", s.Category, s.Capacity)
		}
		if _, dup := p.cats[s.Category]; dup {
			return nil, fmt.Errorf("pool %s: declared twice", s.Category)
		}
		c := &category{
			capacity: s.Capacity,
			idle:     queue{buf: make([]ecs.EntityID, s.Capacity)},
			members:  make(map[ecs.EntityID]bool, s.Capacity),
		}
		for i := 0; i < s.Capacity; i++ {
			id := lc.NewUnit(s.Category)
			lc.SetActive(id, false)
			c.members[id] = true
			c.idle.push(id)
		}
		p.cats[s.Category] = c
		p.order = append(p.order, s.Category)
	}
	return p, nil
}

// Acquire dequeues one idle unit, places it, marks it active and runs its
// reset hook. ok is false when the category has no idle unit (try again
// later) or is not registered.
func (p *Pool) Acquire(cat world.Category, pos world.Vec2, heading float64) (ecs.EntityID, bool) {
	c, found := p.cats[cat]
	if !found {
		p.log.Warn("pool: unknown category", zap.Stringer("category", cat))
		return 0, false
	}
	id, ok := c.idle.pop()
	if !ok {
		p.log.Debug("pool: exhausted", zap.Stringer("category", cat))
		return 0, false
	}
	c.members[id] = false
	p.lc.Place(id, pos, heading)
	p.lc.SetActive(id, true)
	p.lc.OnObjectSpawn(id)
	return id, true
}

// Release deactivates a unit and re-enqueues it at the tail of its
// category's idle queue. Releasing a unit that belongs to another category
// is rejected; releasing an idle unit is a no-op. Returns true only when
// the unit went back to the queue.
func (p *Pool) Release(cat world.Category, id ecs.EntityID) bool {
	c, found := p.cats[cat]
	if !found {
		p.log.Warn("pool: unknown category", zap.Stringer("category", cat))
		return false
	}
	idle, member := c.members[id]
	if !member {
		p.log.Warn("pool: release of foreign unit rejected",
			zap.Stringer("category", cat), zap.Stringer("unit", id))
		return false
	}
	if idle {
		p.log.Debug("pool: unit already idle", zap.Stringer("unit", id))
		return false
	}
	p.lc.SetActive(id, false)
	c.members[id] = true
	c.idle.push(id)
	return true
}

// Stats reports idle/active counts. Idle + Active == Capacity always holds.
func (p *Pool) Stats(cat world.Category) (Stats, bool) {
	c, ok := p.cats[cat]
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Capacity: c.capacity,
		Idle:     c.idle.n,
		Active:   c.capacity - c.idle.n,
	}, true
}

// Categories lists registered categories in declaration order.
func (p *Pool) Categories() []world.Category {
	out := make([]world.Category, len(p.order))
	copy(out, p.order)
	return out
}

// CategoryOf returns the category a unit was created for.
func (p *Pool) CategoryOf(id ecs.EntityID) (world.Category, bool) {
	for _, cat := range p.order {
		if _, ok := p.cats[cat].members[id]; ok {
			return cat, true
		}
	}
	return world.CategoryNone, false
}
