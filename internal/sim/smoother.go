package sim

import "github.com/charmbracelet/harmonica"

// settleFactor scales the spring's angular frequency so a critically damped spring is
// within a few percent of its target one frame after the target moves.
const settleFactor = 4.0

type springState struct {
	vx, vy, vr float64
}

// Smoother eases visual fields toward the physics target. A disabled smoother snaps.
type Smoother struct {
	spring  harmonica.Spring
	enabled bool
}

func NewSmoother(fps int, enabled bool) Smoother {
	if fps <= 0 {
		fps = 60
	}
	return Smoother{
		spring:  harmonica.NewSpring(harmonica.FPS(fps), settleFactor*float64(fps), 1.0),
		enabled: enabled,
	}
}

// Apply moves cur toward target. The first call for a marble snaps so it does not sweep
// in from the origin.
func (s Smoother) Apply(cur *Visual, st *springState, target Visual) {
	if !s.enabled || !cur.Ready {
		*cur = target
		*st = springState{}
		return
	}
	cur.X, st.vx = s.spring.Update(cur.X, st.vx, target.X)
	cur.Y, st.vy = s.spring.Update(cur.Y, st.vy, target.Y)
	cur.Rotation, st.vr = s.spring.Update(cur.Rotation, st.vr, target.Rotation)
}
