package store

import (
	"context"
	"io"
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/san-kum/marblejar/internal/marble"
)

// Saver writes history snapshots on a single goroutine. Only the newest pending snapshot
// is kept, so a burst of submits costs at most one extra write.
type Saver struct {
	store   *Store
	pending chan []marble.Record
	logger  *log.Logger
	saved   atomic.Uint64
	failed  atomic.Uint64
}

func NewSaver(st *Store, logger *log.Logger) *Saver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Saver{
		store:   st,
		pending: make(chan []marble.Record, 1),
		logger:  logger,
	}
}

// Submit queues a copy of records, replacing any snapshot that has not been written yet.
// It never blocks on I/O.
func (s *Saver) Submit(records []marble.Record) {
	snapshot := slices.Clone(records)
	for {
		select {
		case s.pending <- snapshot:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

// Run writes snapshots until ctx is cancelled, then flushes the last pending one.
func (s *Saver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case records := <-s.pending:
				s.write(records)
			default:
			}
			return nil
		case records := <-s.pending:
			s.write(records)
		}
	}
}

func (s *Saver) write(records []marble.Record) {
	if err := s.store.Save(records); err != nil {
		s.failed.Add(1)
		s.logger.Error("saving marbles failed", "path", s.store.Path(), "count", len(records), "err", err)
		return
	}
	s.saved.Add(1)
	s.logger.Debug("saved marbles", "path", s.store.Path(), "count", len(records))
}

// Saved is the number of successful writes.
func (s *Saver) Saved() uint64 { return s.saved.Load() }

// Failed is the number of failed writes.
func (s *Saver) Failed() uint64 { return s.failed.Load() }
