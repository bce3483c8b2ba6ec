package jar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/marblejar/internal/config"
	"github.com/san-kum/marblejar/internal/marble"
	"github.com/san-kum/marblejar/internal/metrics"
	"github.com/san-kum/marblejar/internal/physics"
	"github.com/san-kum/marblejar/internal/sim"
	"github.com/san-kum/marblejar/internal/store"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotMounted     = errors.New("jar: session not mounted")
	ErrAlreadyMounted = errors.New("jar: session already mounted")
	ErrLoaded         = errors.New("jar: history already loaded")
)

type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithReadOnly keeps new marbles in memory only. The saved history is still loaded.
func WithReadOnly() Option { return func(s *Session) { s.readOnly = true } }

// WithStore replaces the store derived from the config's data directory.
func WithStore(st *store.Store) Option { return func(s *Session) { s.store = st } }

// Session is one mounted jar: a physics world, the loop that steps it, the history it
// was built from and the saver persisting that history. Everything except the saver
// runs on the caller's goroutine.
type Session struct {
	cfg      *config.Config
	clock    Clock
	logger   *log.Logger
	store    *store.Store
	saver    *store.Saver
	readOnly bool

	world   *physics.World
	factory *physics.Factory
	loop    *sim.Loop
	records []marble.Record
	loaded  bool
	// unsaved is set when the history file exists but could not be read. Saving over it
	// would destroy the history, so new marbles stay in memory.
	unsaved bool

	cancel context.CancelFunc
	group  *errgroup.Group
}

func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jar: invalid config: %w", err)
	}
	s := &Session{cfg: cfg, clock: SystemClock}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.store == nil {
		s.store = store.New(cfg.DataDir, cfg.FileName)
	}
	return s, nil
}

// Mount builds a fresh world and starts the saver. The saver stops when ctx is done or
// on Unmount, whichever comes first.
func (s *Session) Mount(ctx context.Context) error {
	if s.Mounted() {
		return ErrAlreadyMounted
	}

	s.world = physics.NewWorld(worldOptions(s.cfg))
	s.factory = physics.NewFactory(s.world, marbleSpec(s.cfg), s.cfg.Physics.Seed)
	s.loop = sim.NewLoop(s.world, s.factory, loopOptions(s.cfg), s.logger)
	s.records = make([]marble.Record, 0)
	s.loaded = false
	s.unsaved = false
	s.saver = store.NewSaver(s.store, s.logger)

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.saver.Run(gctx) })
	s.cancel, s.group = cancel, g

	s.logger.Debug("jar mounted", "path", s.store.Path(),
		"width", s.cfg.Playfield.Width, "height", s.cfg.Playfield.Height)
	return nil
}

// Unmount flushes pending saves and disposes the world. After it returns no marble
// can be added or advanced until the next Mount.
func (s *Session) Unmount() error {
	if !s.Mounted() {
		return nil
	}
	s.cancel()
	err := s.group.Wait()
	s.world.Dispose()
	s.cancel, s.group = nil, nil
	s.logger.Debug("jar unmounted", "marbles", len(s.records), "saved", s.saver.Saved())
	return err
}

func (s *Session) Mounted() bool { return s.group != nil }

// Persisting reports whether new marbles are written to disk.
func (s *Session) Persisting() bool { return !s.readOnly && !s.unsaved }

// Load replays the saved history, dropping each marble one diameter higher than the
// last so the stack rebuilds from the bottom. A missing or unreadable file leaves the
// jar empty.
func (s *Session) Load() error {
	if !s.Mounted() {
		return ErrNotMounted
	}
	if s.loaded || len(s.records) > 0 {
		return ErrLoaded
	}
	s.loaded = true

	records, err := s.store.Load()
	switch {
	case errors.Is(err, store.ErrNotExist):
		s.logger.Info("no saved marbles yet", "path", s.store.Path())
	case errors.Is(err, store.ErrCorrupt):
		s.logger.Warn("discarding unreadable history", "path", s.store.Path(), "err", err)
	case err != nil:
		s.unsaved = true
		s.logger.Error("reading history failed, new marbles will not be saved", "path", s.store.Path(), "err", err)
	}

	for i, r := range records {
		if _, err := s.loop.Spawn(r.Color, r.Time(), float64(i+2)); err != nil {
			return fmt.Errorf("jar: replay marble %d: %w", i, err)
		}
		s.records = append(s.records, r)
	}
	s.logger.Info("loaded marbles", "count", len(s.records))
	return nil
}

// Append drops one new marble stamped with the session clock and queues a save of the
// full history.
func (s *Session) Append(c marble.Color) (*sim.Marble, error) {
	if !s.Mounted() {
		return nil, ErrNotMounted
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", marble.ErrUnknownColor, c)
	}

	now := s.clock.Now()
	m, err := s.loop.Spawn(c, now, s.cfg.Marble.SpawnHeight)
	if err != nil {
		return nil, fmt.Errorf("jar: spawn: %w", err)
	}
	s.records = append(s.records, marble.NewRecord(c, now))
	s.loaded = true
	if !s.readOnly && !s.unsaved {
		s.saver.Submit(s.records)
	}
	s.logger.Info("dropped marble", "id", m.ID, "color", c)
	return m, nil
}

// Advance runs one frame. It does nothing when the session is not mounted.
func (s *Session) Advance() {
	if !s.Mounted() {
		return
	}
	s.loop.Advance()
}

func (s *Session) Marbles() []*sim.Marble {
	if s.loop == nil {
		return nil
	}
	return s.loop.Marbles()
}

// Loop exposes the simulation loop for external frame drivers such as sim.Runner.
func (s *Session) Loop() *sim.Loop { return s.loop }

func (s *Session) Config() *config.Config { return s.cfg }

// StorePath is the history file this session reads and writes.
func (s *Session) StorePath() string { return s.store.Path() }

// Records returns a copy of the history in drop order.
func (s *Session) Records() []marble.Record { return slices.Clone(s.records) }

func (s *Session) Stats() metrics.Summary {
	return metrics.Summarize(s.records, s.cfg.Stats.Window, s.cfg.Stats.Alpha)
}

// CanDrop reports whether a new marble is allowed now.
func (s *Session) CanDrop() bool {
	if s.cfg.Schedule.AnyTime {
		return true
	}
	return metrics.CanDrop(s.clock.Now(), metrics.LastDrop(s.records), s.cfg.Schedule.DropHour)
}

// NextDrop is the earliest time CanDrop turns true, or now when it already is.
func (s *Session) NextDrop() time.Time {
	now := s.clock.Now()
	if s.CanDrop() {
		return now
	}
	y, m, d := now.Date()
	at := time.Date(y, m, d, s.cfg.Schedule.DropHour, 0, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
