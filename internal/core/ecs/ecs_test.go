package ecs

import "testing"

func TestAllocatorInvalidatesStaleHandles(t *testing.T) {
	a := NewAllocator()
	first := a.Create()
	if !a.Alive(first) {
		t.Fatalf("expected freshly created handle %s to be alive", first)
	}
	if !a.Destroy(first) {
		t.Fatalf("expected destroy of live handle to succeed")
	}
	if a.Alive(first) {
		t.Fatalf("expected destroyed handle to read as dead")
	}
	if a.Destroy(first) {
		t.Fatalf("expected second destroy of the same handle to be ignored")
	}

	reused := a.Create()
	if reused.Index() != first.Index() {
		t.Fatalf("expected slot %d to be recycled, got %d", first.Index(), reused.Index())
	}
	if reused == first {
		t.Fatalf("expected recycled slot to carry a new generation")
	}
	if a.Alive(first) {
		t.Fatalf("stale handle must not alias the recycled slot")
	}
	if a.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", a.Live())
	}
}

func TestZeroHandleNeverAlive(t *testing.T) {
	a := NewAllocator()
	a.Create()
	if a.Alive(0) {
		t.Fatalf("zero handle must never be alive")
	}
}

func TestStoreKeepsInsertionOrderAcrossRemove(t *testing.T) {
	s := NewStore[int]()
	vals := []int{10, 20, 30, 40}
	for i := range vals {
		s.Set(EntityID(i+1), &vals[i])
	}
	s.Remove(2)

	var got []int
	s.Each(func(_ EntityID, v *int) { got = append(got, *v) })
	want := []int{10, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if v, ok := s.Get(4); !ok || *v != 40 {
		t.Fatalf("expected index of entity 4 to be rebuilt after remove")
	}
}

func TestWorldFlushClearsRegisteredStores(t *testing.T) {
	w := NewWorld()
	s := NewStore[string]()
	w.Register(s)

	id := w.CreateEntity()
	name := "leader"
	s.Set(id, &name)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	if !w.Alive(id) {
		t.Fatalf("entity must stay alive until the queue is flushed")
	}
	if n := w.FlushDestroyQueue(); n != 1 {
		t.Fatalf("expected 1 entity destroyed, got %d", n)
	}
	if w.Alive(id) || s.Has(id) {
		t.Fatalf("expected entity and its components to be gone after flush")
	}
}
