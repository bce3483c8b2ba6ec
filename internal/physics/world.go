package physics

import (
	"errors"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrDisposed is returned when a world is used after Dispose.
var ErrDisposed = errors.New("physics: world disposed")

// WorldOptions describes the jar. Width and Height are the visible playfield; the floor
// surface sits at y = 0 and the walls' inner faces at x = 0 and x = Width.
type WorldOptions struct {
	Width      float64
	Height     float64
	Gravity    float64
	Iterations int
	// WallHeight is a multiple of Height so stacked replays cannot spill over the walls.
	WallHeight float64
	Elasticity float64
	Friction   float64
}

// Boundary names the static shapes created with the world.
type Boundary int

const (
	Floor Boundary = iota
	LeftWall
	RightWall
)

func (b Boundary) String() string {
	switch b {
	case Floor:
		return "floor"
	case LeftWall:
		return "left wall"
	case RightWall:
		return "right wall"
	}
	return "unknown"
}

// World owns the cp.Space and every body in it.
type World struct {
	opts       WorldOptions
	space      *cp.Space
	boundaries [3][2]cp.Vector
	statics    []*cp.Shape
	dynamics   []*cp.Body
	shapes     []*cp.Shape
	disposed   bool
}

func NewWorld(opts WorldOptions) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: opts.Gravity})
	if opts.Iterations > 0 {
		space.Iterations = uint(opts.Iterations)
	}

	w := &World{opts: opts, space: space}

	top := opts.Height * math.Max(opts.WallHeight, 1)
	segments := [3][2]cp.Vector{
		Floor:     {{X: 0, Y: 0}, {X: opts.Width, Y: 0}},
		LeftWall:  {{X: 0, Y: 0}, {X: 0, Y: top}},
		RightWall: {{X: opts.Width, Y: 0}, {X: opts.Width, Y: top}},
	}
	for _, seg := range segments {
		shape := space.AddShape(cp.NewSegment(space.StaticBody, seg[0], seg[1], 0))
		shape.SetElasticity(opts.Elasticity)
		shape.SetFriction(opts.Friction)
		w.statics = append(w.statics, shape)
	}
	w.boundaries = segments
	return w
}

func (w *World) Width() float64  { return w.opts.Width }
func (w *World) Height() float64 { return w.opts.Height }

// Bodies is the number of dynamic bodies registered.
func (w *World) Bodies() int { return len(w.dynamics) }

// Boundary returns the endpoints of a static boundary segment.
func (w *World) Boundary(b Boundary) (a, c cp.Vector) {
	return w.boundaries[b][0], w.boundaries[b][1]
}

// Step advances every body by dt. A disposed world does nothing.
func (w *World) Step(dt float64) {
	if w.disposed {
		return
	}
	w.space.Step(dt)
}

func (w *World) add(body *cp.Body, shape *cp.Shape) error {
	if w.disposed {
		return ErrDisposed
	}
	w.space.AddBody(body)
	w.space.AddShape(shape)
	w.dynamics = append(w.dynamics, body)
	w.shapes = append(w.shapes, shape)
	return nil
}

// Dispose removes every shape and body from the space. Bodies handed out earlier must not
// be used afterwards.
func (w *World) Dispose() {
	if w.disposed {
		return
	}
	w.disposed = true
	for _, s := range w.shapes {
		w.space.RemoveShape(s)
	}
	for _, b := range w.dynamics {
		w.space.RemoveBody(b)
	}
	for _, s := range w.statics {
		w.space.RemoveShape(s)
	}
	w.shapes, w.dynamics, w.statics = nil, nil, nil
}

func (w *World) Disposed() bool { return w.disposed }
