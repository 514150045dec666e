package sched

import (
	"testing"
	"time"
)

func TestPairIsOrderIndependent(t *testing.T) {
	if NewPair(7, 3) != NewPair(3, 7) {
		t.Fatalf("expected (7,3) and (3,7) to name the same pair")
	}
}

func TestPopDueReturnsOnlyExpiredEntries(t *testing.T) {
	s := New[Pair]()
	s.After(NewPair(1, 2), 0, 3*time.Second)
	s.After(NewPair(3, 4), time.Second, time.Second)

	if got := s.PopDue(1900 * time.Millisecond); len(got) != 0 {
		t.Fatalf("expected nothing due at 1.9s, got %v", got)
	}
	got := s.PopDue(2 * time.Second)
	if len(got) != 1 || got[0] != NewPair(3, 4) {
		t.Fatalf("expected pair (3,4) due at 2s, got %v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one entry left pending, got %d", s.Len())
	}
	got = s.PopDue(3 * time.Second)
	if len(got) != 1 || got[0] != NewPair(1, 2) {
		t.Fatalf("expected pair (1,2) due at exactly 3s, got %v", got)
	}
}

func TestRescheduleMovesDueTime(t *testing.T) {
	s := New[Pair]()
	p := NewPair(1, 2)
	s.After(p, 0, time.Second)
	s.After(p, 500*time.Millisecond, time.Second)

	if got := s.PopDue(time.Second); len(got) != 0 {
		t.Fatalf("expected rescheduled entry to wait until 1.5s, got %v", got)
	}
	if got := s.PopDue(1500 * time.Millisecond); len(got) != 1 {
		t.Fatalf("expected entry due at 1.5s")
	}
}

func TestCancel(t *testing.T) {
	s := New[Pair]()
	p := NewPair(1, 2)
	s.After(p, 0, time.Second)
	if !s.Cancel(p) || s.Pending(p) {
		t.Fatalf("expected cancel to drop the pending entry")
	}
	if s.Cancel(p) {
		t.Fatalf("expected second cancel to report nothing pending")
	}
}
