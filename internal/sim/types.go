package sim

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/marblejar/internal/marble"
)

// Visual is what the render layer draws: screen position with Y growing downward and a
// clockwise rotation in degrees. Ready is false until the first frame after spawning.
type Visual struct {
	X, Y     float64
	Rotation float64
	Ready    bool
}

// Marble is a live marble. The body belongs to the loop; Visual is rewritten every frame.
type Marble struct {
	ID        uint64
	Color     marble.Color
	CreatedAt time.Time
	SlotX     float64
	Visual    Visual

	body     *cp.Body
	spring   springState
	reported bool
}

func (m *Marble) Record() marble.Record { return marble.NewRecord(m.Color, m.CreatedAt) }

// Position returns the body's world position and angle in radians.
func (m *Marble) Position() (cp.Vector, float64) {
	return m.body.Position(), m.body.Angle()
}

// Velocity returns the body's linear and angular velocity.
func (m *Marble) Velocity() (cp.Vector, float64) {
	return m.body.Velocity(), m.body.AngularVelocity()
}

// Resting reports whether the last frame left the body with exactly zero velocity.
func (m *Marble) Resting() bool {
	v, w := m.Velocity()
	return v.X == 0 && v.Y == 0 && w == 0
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(frame uint64, marbles []*Marble)
}

type ObserverFunc func(frame uint64, marbles []*Marble)

func (f ObserverFunc) OnFrame(frame uint64, marbles []*Marble) { f(frame, marbles) }

// ToVisual flips the Y axis against the playfield height and turns a counter-clockwise
// angle in radians into a clockwise rotation in degrees.
func ToVisual(pos cp.Vector, angle, height float64) Visual {
	return Visual{
		X:        pos.X,
		Y:        height - pos.Y,
		Rotation: -angle * 180 / math.Pi,
		Ready:    true,
	}
}

// FromVisual is the inverse of ToVisual.
func FromVisual(v Visual, height float64) (cp.Vector, float64) {
	return cp.Vector{X: v.X, Y: height - v.Y}, -v.Rotation * math.Pi / 180
}

// Settle zeroes both velocities when their magnitudes are under threshold.
func Settle(v cp.Vector, w, threshold float64) (cp.Vector, float64, bool) {
	if v.Length() < threshold && math.Abs(w) < threshold {
		return cp.Vector{}, 0, true
	}
	return v, w, false
}

// Clamp replaces non-finite components with zero and caps speed and spin.
func Clamp(v cp.Vector, w, maxSpeed, maxSpin float64) (cp.Vector, float64, bool) {
	clamped := false
	if !finite(v.X) || !finite(v.Y) {
		v, clamped = cp.Vector{}, true
	}
	if !finite(w) {
		w, clamped = 0, true
	}
	if speed := v.Length(); maxSpeed > 0 && speed > maxSpeed {
		v, clamped = v.Mult(maxSpeed/speed), true
	}
	if maxSpin > 0 && math.Abs(w) > maxSpin {
		w, clamped = math.Copysign(maxSpin, w), true
	}
	return v, w, clamped
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
