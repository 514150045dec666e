package ecs

// World owns the handle allocator, the set of registered component stores
// and a deferred destruction queue flushed by CleanupSystem each tick.
//
// Destruction is deferred so that a handle stays readable for the rest of
// the tick it was killed in; validity checks made by later deferred work
// (see core/sched) observe the destroy once the queue is flushed.
type World struct {
	alloc        *Allocator
	stores       []Removable
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		alloc:        NewAllocator(),
		stores:       make([]Removable, 0, 8),
		destroyQueue: make([]EntityID, 0, 16),
		queued:       make(map[EntityID]struct{}, 16),
	}
}

// Register adds a component store so FlushDestroyQueue clears it.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID {
	return w.alloc.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.alloc.Alive(id)
}

func (w *World) Live() int { return w.alloc.Live() }

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice queues it once.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.alloc.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending reports whether id is queued for destruction.
func (w *World) Pending(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys all queued entities and clears their
// components. It returns the number of entities destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		if w.alloc.Destroy(id) {
			n++
		}
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
