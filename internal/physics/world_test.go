package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func testWorld(gravity float64) *World {
	return NewWorld(WorldOptions{
		Width:      390,
		Height:     844,
		Gravity:    gravity,
		Iterations: 10,
		WallHeight: 50,
		Elasticity: 0.7,
		Friction:   0.3,
	})
}

func testSpec() MarbleSpec {
	return MarbleSpec{
		Size:           40,
		Mass:           1,
		Elasticity:     0.7,
		Friction:       0.3,
		Damping:        0.2,
		AngularDamping: 0.2,
		SpawnSpeed:     10,
		SpawnSpin:      10,
	}
}

func TestBoundaries(t *testing.T) {
	w := testWorld(-1000)
	defer w.Dispose()

	tests := []struct {
		b    Boundary
		a, c cp.Vector
	}{
		{Floor, cp.Vector{X: 0, Y: 0}, cp.Vector{X: 390, Y: 0}},
		{LeftWall, cp.Vector{X: 0, Y: 0}, cp.Vector{X: 0, Y: 844 * 50}},
		{RightWall, cp.Vector{X: 390, Y: 0}, cp.Vector{X: 390, Y: 844 * 50}},
	}
	for _, tt := range tests {
		t.Run(tt.b.String(), func(t *testing.T) {
			a, c := w.Boundary(tt.b)
			if a != tt.a || c != tt.c {
				t.Errorf("got %v-%v, want %v-%v", a, c, tt.a, tt.c)
			}
		})
	}
}

func TestSpawnConstraint(t *testing.T) {
	w := testWorld(-1000)
	defer w.Dispose()
	spec := testSpec()
	f := NewFactory(w, spec, 1)

	for i := 0; i < 2000; i++ {
		x := f.SlotX()
		if x < 0 || x > w.Width()-spec.Size {
			t.Fatalf("slot %f outside [0, %f]", x, w.Width()-spec.Size)
		}
	}
}

func TestSpawnConstraintWhenMarbleFillsJar(t *testing.T) {
	w := NewWorld(WorldOptions{Width: 40, Height: 100, Gravity: -10, WallHeight: 2})
	defer w.Dispose()
	f := NewFactory(w, testSpec(), 1)
	if x := f.SlotX(); x != 0 {
		t.Errorf("expected slot 0 when marble is as wide as the jar, got %f", x)
	}
}

func TestCreate(t *testing.T) {
	w := testWorld(-1000)
	defer w.Dispose()
	spec := testSpec()
	f := NewFactory(w, spec, 3)

	for i := 0; i < 50; i++ {
		modifier := float64(i + 2)
		s, err := f.Create(modifier)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		pos := s.Body.Position()
		if pos.X != s.SlotX+spec.Size/2 {
			t.Errorf("body centre %f should be half a diameter right of slot %f", pos.X, s.SlotX)
		}
		if want := w.Height() + spec.Size*modifier; pos.Y != want {
			t.Errorf("spawn height %f, want %f", pos.Y, want)
		}
		if pos.Y-spec.Size/2 <= w.Height() {
			t.Error("marble should spawn fully above the visible top")
		}

		v := s.Body.Velocity()
		if v.Y != 0 || math.Abs(v.X) > spec.SpawnSpeed/2 {
			t.Errorf("initial velocity %v outside range", v)
		}
		if math.Abs(s.Body.AngularVelocity()) > spec.SpawnSpin/2 {
			t.Errorf("initial spin %f outside range", s.Body.AngularVelocity())
		}
		if s.Body.Mass() != spec.Mass {
			t.Errorf("mass = %f, want %f", s.Body.Mass(), spec.Mass)
		}
	}

	if w.Bodies() != 50 {
		t.Errorf("expected 50 bodies, got %d", w.Bodies())
	}
}

func TestFactoryIsDeterministicForSeed(t *testing.T) {
	w1, w2 := testWorld(-1000), testWorld(-1000)
	defer w1.Dispose()
	defer w2.Dispose()
	f1, f2 := NewFactory(w1, testSpec(), 99), NewFactory(w2, testSpec(), 99)

	for i := 0; i < 10; i++ {
		a, _ := f1.Create(2)
		b, _ := f2.Create(2)
		if a.SlotX != b.SlotX || a.Body.Velocity() != b.Body.Velocity() {
			t.Fatalf("spawn %d differs for equal seeds", i)
		}
	}
}

func TestDampingSlowsFreeBody(t *testing.T) {
	w := testWorld(0)
	defer w.Dispose()
	spec := testSpec()
	spec.SpawnSpeed, spec.SpawnSpin = 0, 0
	f := NewFactory(w, spec, 5)
	s, _ := f.Create(2)
	s.Body.SetVelocity(0, 100)
	s.Body.SetAngularVelocity(4)

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}

	if v := s.Body.Velocity().Y; math.Abs(v-80) > 0.5 {
		t.Errorf("after one time unit at 0.2 damping expected ~80, got %f", v)
	}
	if av := s.Body.AngularVelocity(); math.Abs(av-3.2) > 0.05 {
		t.Errorf("expected angular velocity ~3.2, got %f", av)
	}
}

func TestDispose(t *testing.T) {
	w := testWorld(-1000)
	f := NewFactory(w, testSpec(), 1)
	if _, err := f.Create(2); err != nil {
		t.Fatal(err)
	}

	w.Dispose()
	w.Dispose()
	w.Step(1.0 / 60.0)

	if !w.Disposed() || w.Bodies() != 0 {
		t.Error("world should be empty after dispose")
	}
	if _, err := f.Create(2); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}
