package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FileName != "marbles.json" {
		t.Errorf("expected file marbles.json, got %s", cfg.FileName)
	}
	if cfg.Physics.Step <= 0 {
		t.Error("step should be positive")
	}
	if cfg.Physics.RestThreshold != 0.1 {
		t.Errorf("expected rest threshold 0.1, got %f", cfg.Physics.RestThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Playfield.Width = 0 }},
		{"negative height", func(c *Config) { c.Playfield.Height = -1 }},
		{"zero step", func(c *Config) { c.Physics.Step = 0 }},
		{"zero iterations", func(c *Config) { c.Physics.Iterations = 0 }},
		{"marble wider than jar", func(c *Config) { c.Marble.Size = c.Playfield.Width + 1 }},
		{"full damping", func(c *Config) { c.Marble.Damping = 1 }},
		{"zero fps", func(c *Config) { c.Render.FPS = 0 }},
		{"drop hour 24", func(c *Config) { c.Schedule.DropHour = 24 }},
		{"zero window", func(c *Config) { c.Stats.Window = 0 }},
		{"alpha above one", func(c *Config) { c.Stats.Alpha = 1.5 }},
		{"empty file name", func(c *Config) { c.FileName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jar.yaml")
	data := []byte("playfield:\n  width: 500\nmarble:\n  size: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Playfield.Width != 500 {
		t.Errorf("expected width 500, got %f", cfg.Playfield.Width)
	}
	if cfg.Playfield.Height != DefaultHeight {
		t.Errorf("expected default height, got %f", cfg.Playfield.Height)
	}
	if cfg.Marble.Size != 30 {
		t.Errorf("expected size 30, got %f", cfg.Marble.Size)
	}
	if cfg.Marble.Elasticity != DefaultElasticity {
		t.Errorf("expected default elasticity, got %f", cfg.Marble.Elasticity)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jar.yaml")
	cfg := DefaultConfig()
	cfg.Schedule.DropHour = 6
	cfg.Physics.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Schedule.DropHour != 6 || loaded.Physics.Seed != 42 {
		t.Errorf("round trip lost values: %+v", loaded.Schedule)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("tablet")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Playfield.Width != 820 {
		t.Errorf("expected width 820, got %f", cfg.Playfield.Width)
	}
	if cfg.Physics.Step != DefaultStep {
		t.Error("preset should keep defaults it does not override")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
