package sim

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kamstrup/intmap"
	"github.com/san-kum/marblejar/internal/marble"
	"github.com/san-kum/marblejar/internal/physics"
)

type Options struct {
	// Step is the fixed physics delta per frame.
	Step          float64
	RestThreshold float64
	MaxSpeed      float64
	MaxSpin       float64
	FPS           int
	Smoothing     bool
}

// Loop steps the world once per frame and keeps every marble's Visual in sync with its
// body. It is not safe for concurrent use; drive it from one goroutine.
type Loop struct {
	world     *physics.World
	factory   *physics.Factory
	opts      Options
	smoother  Smoother
	marbles   []*Marble
	index     *intmap.Map[uint64, *Marble]
	observers []Observer
	frame     uint64
	logger    *log.Logger
}

func NewLoop(world *physics.World, factory *physics.Factory, opts Options, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loop{
		world:    world,
		factory:  factory,
		opts:     opts,
		smoother: NewSmoother(opts.FPS, opts.Smoothing),
		marbles:  make([]*Marble, 0),
		index:    intmap.New[uint64, *Marble](64),
		logger:   logger,
	}
}

func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Spawn creates a marble body heightModifier diameters above the top and tracks it.
// Its Visual stays zero until the next Advance.
func (l *Loop) Spawn(c marble.Color, createdAt time.Time, heightModifier float64) (*Marble, error) {
	s, err := l.factory.Create(heightModifier)
	if err != nil {
		return nil, err
	}
	m := &Marble{
		ID:        uint64(len(l.marbles) + 1),
		Color:     c,
		CreatedAt: createdAt,
		SlotX:     s.SlotX,
		body:      s.Body,
	}
	l.marbles = append(l.marbles, m)
	l.index.Put(m.ID, m)
	return m, nil
}

// Advance runs one frame: guard, step, settle, sync, notify.
func (l *Loop) Advance() {
	for _, m := range l.marbles {
		l.guard(m)
	}
	l.world.Step(l.opts.Step)
	l.frame++

	height := l.world.Height()
	for _, m := range l.marbles {
		l.settle(m)

		pos, angle := m.Position()
		if !finite(pos.X) || !finite(pos.Y) || !finite(angle) {
			if !m.reported {
				l.logger.Warn("marble position diverged", "id", m.ID, "frame", l.frame)
				m.reported = true
			}
			continue
		}
		l.smoother.Apply(&m.Visual, &m.spring, ToVisual(pos, angle, height))
	}

	for _, o := range l.observers {
		o.OnFrame(l.frame, l.marbles)
	}
}

// guard keeps a bad velocity from reaching the solver.
func (l *Loop) guard(m *Marble) {
	v, w := m.Velocity()
	if v, w, clamped := Clamp(v, w, l.opts.MaxSpeed, l.opts.MaxSpin); clamped {
		m.body.SetVelocityVector(v)
		m.body.SetAngularVelocity(w)
	}
}

func (l *Loop) settle(m *Marble) {
	v, w := m.Velocity()

	v, w, clamped := Clamp(v, w, l.opts.MaxSpeed, l.opts.MaxSpin)
	if clamped {
		l.logger.Debug("clamped marble velocity", "id", m.ID, "frame", l.frame)
	}
	v, w, rested := Settle(v, w, l.opts.RestThreshold)
	if clamped || rested {
		m.body.SetVelocityVector(v)
		m.body.SetAngularVelocity(w)
	}
}

// Marbles returns live marbles in insertion order. The slice is shared; do not modify it.
func (l *Loop) Marbles() []*Marble { return l.marbles }

func (l *Loop) Lookup(id uint64) (*Marble, bool) { return l.index.Get(id) }

func (l *Loop) Len() int { return len(l.marbles) }

// Frame is the number of completed Advance calls.
func (l *Loop) Frame() uint64 { return l.frame }

func (l *Loop) World() *physics.World { return l.world }

// Resting reports whether every marble is at rest.
func (l *Loop) Resting() bool {
	for _, m := range l.marbles {
		if !m.Resting() {
			return false
		}
	}
	return true
}
