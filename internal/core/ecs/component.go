package ecs

// Removable is implemented by all component stores so the World can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component store that iterates in insertion order.
// Simulation passes walk stores every tick, and a stable order keeps a
// seeded run reproducible from one process to the next.
type Store[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	data  []*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		index: make(map[EntityID]int, 128),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

// Remove deletes id while keeping the relative order of the remaining
// entries.
func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	delete(s.index, id)
	copy(s.ids[i:], s.ids[i+1:])
	copy(s.data[i:], s.data[i+1:])
	last := len(s.ids) - 1
	s.ids[last] = 0
	s.data[last] = nil
	s.ids = s.ids[:last]
	s.data = s.data[:last]
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.ids)
}

// Each visits every entry in insertion order. fn must not add or remove
// entries of this store.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.data[i])
	}
}

// IDs returns a copy of the stored handles in insertion order, safe to
// range over while the store is mutated.
func (s *Store[T]) IDs() []EntityID {
	out := make([]EntityID, len(s.ids))
	copy(out, s.ids)
	return out
}
