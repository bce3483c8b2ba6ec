package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/marblejar/internal/marble"
)

// Theme colors the jar and the stats pane.
type Theme struct {
	Name   string
	Good   lipgloss.Color
	Bad    lipgloss.Color
	Glass  lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:   "classic",
		Good:   lipgloss.Color("#4caf50"),
		Bad:    lipgloss.Color("#f44336"),
		Glass:  lipgloss.Color("#8899aa"),
		Accent: lipgloss.Color("#00ccff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Good:   lipgloss.Color("#88ff88"),
		Bad:    lipgloss.Color("#ffff00"),
		Glass:  lipgloss.Color("#005500"),
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Good:   lipgloss.Color("#00ff88"),
		Bad:    lipgloss.Color("#ff4444"),
		Glass:  lipgloss.Color("#4488aa"),
		Accent: lipgloss.Color("#ffd700"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Good:   lipgloss.Color("#5fd068"),
		Bad:    lipgloss.Color("#ff4757"),
		Glass:  lipgloss.Color("#8b6b8c"),
		Accent: lipgloss.Color("#feca57"),
		Text:   lipgloss.Color("#fff5f5"),
		Muted:  lipgloss.Color("#8b6b8c"),
	}

	Themes = []Theme{
		ThemeClassic,
		ThemeRetro,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Next returns the theme after t, wrapping around.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeClassic
}

// Hex returns the color used for c in this theme.
func (t Theme) Hex(c marble.Color) lipgloss.Color {
	switch c {
	case marble.Green:
		return t.Good
	case marble.Red:
		return t.Bad
	}
	return t.Glass
}

// CellStyle is the foreground style for a canvas cell of color c.
func (t Theme) CellStyle(c marble.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hex(c))
}
