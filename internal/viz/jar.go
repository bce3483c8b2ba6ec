package viz

import (
	"math"

	"github.com/san-kum/marblejar/internal/sim"
)

// Projection maps visual coordinates of the playfield onto canvas dots.
type Projection struct {
	Scale            float64
	OffsetX, OffsetY float64
	Width, Height    float64
}

// Fit scales a width x height playfield into a dotsW x dotsH area, keeping its aspect
// and leaving one dot for each wall and the floor. The jar is centred horizontally and
// rests on the bottom edge.
func Fit(dotsW, dotsH int, width, height float64) Projection {
	innerW, innerH := float64(dotsW-2), float64(dotsH-1)
	scale := math.Min(innerW/width, innerH/height)
	if scale <= 0 || math.IsNaN(scale) {
		scale = 0
	}
	return Projection{
		Scale:   scale,
		OffsetX: 1 + (innerW-width*scale)/2,
		OffsetY: innerH - height*scale,
		Width:   width,
		Height:  height,
	}
}

func (p Projection) Point(x, y float64) (int, int) {
	return int(math.Round(p.OffsetX + x*p.Scale)), int(math.Round(p.OffsetY + y*p.Scale))
}

// DrawJar draws the walls, the floor and every marble that has a visual position. A
// notch on each marble shows its rotation.
func DrawJar(c *Canvas, p Projection, marbles []*sim.Marble, size float64) {
	left, top := p.Point(0, 0)
	right, bottom := p.Point(p.Width, p.Height)
	c.DrawLine(left-1, top, left-1, bottom, 0)
	c.DrawLine(right, top, right, bottom, 0)
	c.DrawLine(left-1, bottom, right, bottom, 0)

	r := max(1, int(math.Round(size/2*p.Scale)))
	for _, m := range marbles {
		if !m.Visual.Ready {
			continue
		}
		cx, cy := p.Point(m.Visual.X, m.Visual.Y)
		c.FillCircle(cx, cy, r, m.Color)
		if r < 2 {
			continue
		}
		rad := m.Visual.Rotation * math.Pi / 180
		nx := cx + int(math.Round(float64(r-1)*math.Cos(rad)))
		ny := cy + int(math.Round(float64(r-1)*math.Sin(rad)))
		c.Unset(nx, ny)
	}
}
