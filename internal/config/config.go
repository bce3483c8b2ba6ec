package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName      = "marbles.json"
	DefaultDataDir       = ".marblejar"
	DefaultWidth         = 390.0
	DefaultHeight        = 844.0
	DefaultStep          = 1.0 / 60.0
	DefaultIterations    = 10
	DefaultGravity       = -1000.0
	DefaultRestThreshold = 0.1
	DefaultMaxSpeed      = 5000.0
	DefaultWallHeight    = 50.0
	DefaultMarbleSize    = 40.0
	DefaultMass          = 1.0
	DefaultElasticity    = 0.7
	DefaultFriction      = 0.3
	DefaultDamping       = 0.2
	DefaultSpawnSpeed    = 10.0
	DefaultSpawnSpin     = 10.0
	DefaultSpawnHeight   = 2.0
	DefaultFPS           = 60
	DefaultDropHour      = 17
	DefaultWindow        = 7
	DefaultAlpha         = 0.1
)

type Config struct {
	DataDir   string          `yaml:"data_dir"`
	FileName  string          `yaml:"file_name"`
	Playfield PlayfieldConfig `yaml:"playfield"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Marble    MarbleConfig    `yaml:"marble"`
	Render    RenderConfig    `yaml:"render"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Stats     StatsConfig     `yaml:"stats"`
}

// PlayfieldConfig is the jar interior in world units. Width and height match the viewport.
type PlayfieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PhysicsConfig struct {
	Step          float64 `yaml:"step"`
	Iterations    int     `yaml:"iterations"`
	Gravity       float64 `yaml:"gravity"`
	RestThreshold float64 `yaml:"rest_threshold"`
	MaxSpeed      float64 `yaml:"max_speed"`
	WallHeight    float64 `yaml:"wall_height"`
	Seed          uint64  `yaml:"seed"`
}

type MarbleConfig struct {
	Size           float64 `yaml:"size"`
	Mass           float64 `yaml:"mass"`
	Elasticity     float64 `yaml:"elasticity"`
	Friction       float64 `yaml:"friction"`
	Damping        float64 `yaml:"damping"`
	AngularDamping float64 `yaml:"angular_damping"`
	SpawnSpeed     float64 `yaml:"spawn_speed"`
	SpawnSpin      float64 `yaml:"spawn_spin"`
	SpawnHeight    float64 `yaml:"spawn_height"`
}

type RenderConfig struct {
	FPS       int  `yaml:"fps"`
	Smoothing bool `yaml:"smoothing"`
}

type ScheduleConfig struct {
	DropHour int  `yaml:"drop_hour"`
	AnyTime  bool `yaml:"any_time"`
}

type StatsConfig struct {
	Window int     `yaml:"window"`
	Alpha  float64 `yaml:"alpha"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:  DefaultDataDir,
		FileName: DefaultFileName,
		Playfield: PlayfieldConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Physics: PhysicsConfig{
			Step:          DefaultStep,
			Iterations:    DefaultIterations,
			Gravity:       DefaultGravity,
			RestThreshold: DefaultRestThreshold,
			MaxSpeed:      DefaultMaxSpeed,
			WallHeight:    DefaultWallHeight,
		},
		Marble: MarbleConfig{
			Size:           DefaultMarbleSize,
			Mass:           DefaultMass,
			Elasticity:     DefaultElasticity,
			Friction:       DefaultFriction,
			Damping:        DefaultDamping,
			AngularDamping: DefaultDamping,
			SpawnSpeed:     DefaultSpawnSpeed,
			SpawnSpin:      DefaultSpawnSpin,
			SpawnHeight:    DefaultSpawnHeight,
		},
		Render: RenderConfig{
			FPS:       DefaultFPS,
			Smoothing: true,
		},
		Schedule: ScheduleConfig{DropHour: DefaultDropHour},
		Stats: StatsConfig{
			Window: DefaultWindow,
			Alpha:  DefaultAlpha,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.FileName == "":
		return fmt.Errorf("file_name must not be empty")
	case c.Playfield.Width <= 0 || c.Playfield.Height <= 0:
		return fmt.Errorf("playfield must be positive, got %gx%g", c.Playfield.Width, c.Playfield.Height)
	case c.Physics.Step <= 0:
		return fmt.Errorf("physics step must be positive, got %f", c.Physics.Step)
	case c.Physics.Iterations <= 0:
		return fmt.Errorf("physics iterations must be positive, got %d", c.Physics.Iterations)
	case c.Physics.RestThreshold < 0:
		return fmt.Errorf("rest threshold must not be negative, got %f", c.Physics.RestThreshold)
	case c.Physics.MaxSpeed <= 0:
		return fmt.Errorf("max speed must be positive, got %f", c.Physics.MaxSpeed)
	case c.Physics.WallHeight < 1:
		return fmt.Errorf("wall height must be at least 1 playfield, got %f", c.Physics.WallHeight)
	case c.Marble.Size <= 0 || c.Marble.Size > c.Playfield.Width:
		return fmt.Errorf("marble size must be in (0, %g], got %f", c.Playfield.Width, c.Marble.Size)
	case c.Marble.Mass <= 0:
		return fmt.Errorf("marble mass must be positive, got %f", c.Marble.Mass)
	case c.Marble.Damping < 0 || c.Marble.Damping >= 1:
		return fmt.Errorf("damping must be in [0, 1), got %f", c.Marble.Damping)
	case c.Marble.AngularDamping < 0 || c.Marble.AngularDamping >= 1:
		return fmt.Errorf("angular damping must be in [0, 1), got %f", c.Marble.AngularDamping)
	case c.Marble.SpawnSpeed < 0 || c.Marble.SpawnSpin < 0:
		return fmt.Errorf("spawn ranges must not be negative")
	case c.Render.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.Render.FPS)
	case c.Schedule.DropHour < 0 || c.Schedule.DropHour > 23:
		return fmt.Errorf("drop hour must be in 0..23, got %d", c.Schedule.DropHour)
	case c.Stats.Window < 1:
		return fmt.Errorf("stats window must be at least 1, got %d", c.Stats.Window)
	case c.Stats.Alpha <= 0 || c.Stats.Alpha > 1:
		return fmt.Errorf("stats alpha must be in (0, 1], got %f", c.Stats.Alpha)
	}
	return nil
}
