// Package sched models deferred resumption ("resume after D") as explicit
// entries checked once per tick against the shared simulation clock.
package sched

import (
	"sort"
	"time"

	"github.com/crowdclash/server/internal/core/ecs"
)

// Pair identifies a deferred operation spanning two actors. NewPair orders
// the handles so (a, b) and (b, a) name the same entry.
type Pair struct {
	A, B ecs.EntityID
}

func NewPair(a, b ecs.EntityID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

type entry[K comparable] struct {
	key K
	due time.Duration
	seq uint64
}

// Scheduler holds at most one pending entry per key. Scheduling a key that
// is already pending moves its due time.
// Accessed only from the game loop goroutine, no locks.
type Scheduler[K comparable] struct {
	pending map[K]*entry[K]
	seq     uint64
}

func New[K comparable]() *Scheduler[K] {
	return &Scheduler[K]{pending: make(map[K]*entry[K])}
}

// After schedules key to become due at now+d.
func (s *Scheduler[K]) After(key K, now, d time.Duration) {
	s.seq++
	if e, ok := s.pending[key]; ok {
		e.due = now + d
		e.seq = s.seq
		return
	}
	s.pending[key] = &entry[K]{key: key, due: now + d, seq: s.seq}
}

// Cancel drops a pending entry. Returns false if key was not pending.
func (s *Scheduler[K]) Cancel(key K) bool {
	if _, ok := s.pending[key]; !ok {
		return false
	}
	delete(s.pending, key)
	return true
}

func (s *Scheduler[K]) Pending(key K) bool {
	_, ok := s.pending[key]
	return ok
}

func (s *Scheduler[K]) Len() int { return len(s.pending) }

// PopDue removes and returns every key due at or before now, earliest due
// first, ties broken by scheduling order.
func (s *Scheduler[K]) PopDue(now time.Duration) []K {
	var due []*entry[K]
	for _, e := range s.pending {
		if e.due <= now {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	keys := make([]K, len(due))
	for i, e := range due {
		keys[i] = e.key
		delete(s.pending, e.key)
	}
	return keys
}
