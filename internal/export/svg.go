package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/marblejar/internal/sim"
	"github.com/san-kum/marblejar/internal/viz"
)

// JarToSVG draws the playfield in world units: the jar outline and one circle per
// marble at its visual position, rotated by its visual rotation.
func JarToSVG(w io.Writer, marbles []*sim.Marble, width, height, size float64, theme viz.Theme) error {
	const pad = 4.0
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.0f %.0f %.0f %.0f">
<rect x="%.0f" y="%.0f" width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="2" d="M0,0 L0,%.1f L%.1f,%.1f L%.1f,0"/>
`, width+2*pad, height+2*pad, -pad, -pad, width+2*pad, height+2*pad, -pad, -pad,
		theme.Glass, height, width, height, width))

	r := size / 2
	for _, m := range marbles {
		if !m.Visual.Ready {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<g transform="translate(%.2f,%.2f) rotate(%.2f)"><circle r="%.1f" fill="%s"/><line x1="0" y1="0" x2="%.1f" y2="0" stroke="#0a0a0a" stroke-width="2"/></g>
`, m.Visual.X, m.Visual.Y, m.Visual.Rotation, r, theme.Hex(m.Color), r*0.8))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
