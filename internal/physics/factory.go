package physics

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/jakecoffman/cp"
)

// MarbleSpec holds the per-marble body parameters.
type MarbleSpec struct {
	Size           float64
	Mass           float64
	Elasticity     float64
	Friction       float64
	Damping        float64
	AngularDamping float64
	// SpawnSpeed and SpawnSpin are the widths of the symmetric ranges the initial
	// horizontal velocity and angular velocity are drawn from.
	SpawnSpeed float64
	SpawnSpin  float64
}

// Spawn is a freshly registered marble body. SlotX is the left edge of the spawn slot;
// the body centre sits half a diameter to its right.
type Spawn struct {
	Body  *cp.Body
	SlotX float64
}

type Factory struct {
	world *World
	spec  MarbleSpec
	rng   *rand.Rand
}

// NewFactory seeds its generator from seed, or from the clock when seed is zero.
func NewFactory(world *World, spec MarbleSpec, seed uint64) *Factory {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Factory{
		world: world,
		spec:  spec,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (f *Factory) Spec() MarbleSpec { return f.spec }

// SlotX draws a spawn slot in [0, width - size].
func (f *Factory) SlotX() float64 {
	span := f.world.Width() - f.spec.Size
	if span <= 0 {
		return 0
	}
	return f.rng.Float64() * span
}

// Create builds a marble body heightModifier diameters above the visible top and adds
// it to the world.
func (f *Factory) Create(heightModifier float64) (Spawn, error) {
	if f.world.Disposed() {
		return Spawn{}, ErrDisposed
	}

	radius := f.spec.Size / 2
	slot := f.SlotX()

	body := cp.NewBody(f.spec.Mass, cp.MomentForCircle(f.spec.Mass, 0, radius, cp.Vector{}))
	body.SetPosition(cp.Vector{
		X: slot + radius,
		Y: f.world.Height() + f.spec.Size*heightModifier,
	})
	body.SetVelocity((f.rng.Float64()-0.5)*f.spec.SpawnSpeed, 0)
	body.SetAngularVelocity((f.rng.Float64() - 0.5) * f.spec.SpawnSpin)
	body.SetVelocityUpdateFunc(dampedVelocity(f.spec.Damping, f.spec.AngularDamping))

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetElasticity(f.spec.Elasticity)
	shape.SetFriction(f.spec.Friction)

	if err := f.world.add(body, shape); err != nil {
		return Spawn{}, err
	}
	return Spawn{Body: body, SlotX: slot}, nil
}

// dampedVelocity applies linear and angular damping as the fraction of velocity lost per
// time unit, on top of the space's own damping.
func dampedVelocity(linear, angular float64) cp.BodyVelocityFunc {
	return func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		body.SetVelocityVector(body.Velocity().Mult(math.Pow(1-linear, dt)))
		body.SetAngularVelocity(body.AngularVelocity() * math.Pow(1-angular, dt))
	}
}
