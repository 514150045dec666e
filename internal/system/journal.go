package system

import (
	"context"
	"time"

	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventJournal stores event records for a match (persist.JournalRepo).
type EventJournal interface {
	AppendEvents(ctx context.Context, match uuid.UUID, recs []event.Record) error
}

// JournalSystem buffers every dispatched domain event and flushes the
// buffer to the journal at a fixed interval. Phase 7 (Persist).
type JournalSystem struct {
	journal  EventJournal
	match    uuid.UUID
	clock    coresys.Clock
	interval time.Duration
	log      *zap.Logger
	buf      []event.Record
	next     time.Duration
	written  int
}

func NewJournalSystem(bus *event.Bus, journal EventJournal, match uuid.UUID, clock coresys.Clock, interval time.Duration, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{
		journal:  journal,
		match:    match,
		clock:    clock,
		interval: interval,
		log:      log,
		next:     interval,
	}
	event.SubscribeRecords(bus, func(r event.Record) { s.buf = append(s.buf, r) })
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	if now := s.clock.Now(); now >= s.next {
		s.next = now + s.interval
		s.Flush()
	}
}

// Written returns the number of records stored so far.
func (s *JournalSystem) Written() int { return s.written }

// Flush writes the buffered records now. A failed batch is logged and
// dropped so a journal outage never stalls the tick loop.
func (s *JournalSystem) Flush() {
	if len(s.buf) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.AppendEvents(ctx, s.match, s.buf); err != nil {
		s.log.Error("journal flush failed", zap.Error(err), zap.Int("dropped", len(s.buf)))
	} else {
		s.written += len(s.buf)
	}
	s.buf = s.buf[:0]
}
