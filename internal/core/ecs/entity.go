package ecs

import "fmt"

// EntityID is a stable handle to an actor. The lower 32 bits hold the slot
// index, the upper 32 bits the slot generation. A handle is only valid while
// the generation it carries matches the slot's current generation, so a
// handle kept across a destroy reads as dead instead of aliasing a new actor.
//
// Generations start at 1, which keeps the zero handle permanently invalid.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	if id.IsZero() {
		return "e:nil"
	}
	return fmt.Sprintf("e:%d.%d", id.Index(), id.Generation())
}

// Allocator hands out generational handles and recycles slots through a
// LIFO free list.
type Allocator struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewAllocator() *Allocator {
	return &Allocator{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (a *Allocator) Create() EntityID {
	a.live++
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return NewEntityID(idx, a.generations[idx])
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	return NewEntityID(idx, 1)
}

func (a *Allocator) Alive(id EntityID) bool {
	idx := id.Index()
	if id.IsZero() || int(idx) >= len(a.generations) {
		return false
	}
	return a.generations[idx] == id.Generation()
}

// Destroy invalidates id. Stale or already destroyed handles are ignored.
func (a *Allocator) Destroy(id EntityID) bool {
	if !a.Alive(id) {
		return false
	}
	idx := id.Index()
	a.generations[idx]++
	if a.generations[idx] == 0 {
		a.generations[idx] = 1
	}
	a.freeList = append(a.freeList, idx)
	a.live--
	return true
}

// Live returns the number of handles currently valid.
func (a *Allocator) Live() int { return a.live }
