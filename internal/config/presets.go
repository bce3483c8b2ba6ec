package config

import "sort"

// Presets only carry the fields that differ from DefaultConfig.
var Presets = map[string]func(*Config){
	"phone": func(c *Config) {
		c.Playfield = PlayfieldConfig{Width: 390, Height: 844}
	},
	"tablet": func(c *Config) {
		c.Playfield = PlayfieldConfig{Width: 820, Height: 1180}
		c.Marble.Size = 56
	},
	"terminal": func(c *Config) {
		c.Playfield = PlayfieldConfig{Width: 320, Height: 400}
		c.Marble.Size = 24
		c.Render.FPS = 30
	},
	"calm": func(c *Config) {
		c.Marble.Elasticity = 0.3
		c.Marble.SpawnSpeed = 0
		c.Marble.SpawnSpin = 0
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
