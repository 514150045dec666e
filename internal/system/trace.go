package system

import (
	"time"

	"github.com/crowdclash/server/internal/core/event"
	coresys "github.com/crowdclash/server/internal/core/system"
	"go.uber.org/zap"
)

// RecordWriter appends event records (trace.Writer).
type RecordWriter interface {
	Write(rec event.Record) error
	Flush() error
}

// TraceSystem streams every dispatched domain event to the trace file and
// flushes once per tick. Phase 7 (Persist).
type TraceSystem struct {
	w      RecordWriter
	log    *zap.Logger
	failed bool
}

func NewTraceSystem(bus *event.Bus, w RecordWriter, log *zap.Logger) *TraceSystem {
	s := &TraceSystem{w: w, log: log}
	event.SubscribeRecords(bus, s.write)
	return s
}

func (s *TraceSystem) write(r event.Record) {
	if s.failed {
		return
	}
	if err := s.w.Write(r); err != nil {
		s.log.Error("trace write failed, tracing disabled", zap.Error(err))
		s.failed = true
	}
}

func (s *TraceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TraceSystem) Update(_ time.Duration) {
	if s.failed {
		return
	}
	if err := s.w.Flush(); err != nil {
		s.log.Error("trace flush failed, tracing disabled", zap.Error(err))
		s.failed = true
	}
}
