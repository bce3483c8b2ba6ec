package jar

import (
	"github.com/san-kum/marblejar/internal/config"
	"github.com/san-kum/marblejar/internal/physics"
	"github.com/san-kum/marblejar/internal/sim"
)

func worldOptions(cfg *config.Config) physics.WorldOptions {
	return physics.WorldOptions{
		Width:      cfg.Playfield.Width,
		Height:     cfg.Playfield.Height,
		Gravity:    cfg.Physics.Gravity,
		Iterations: cfg.Physics.Iterations,
		WallHeight: cfg.Physics.WallHeight,
		Elasticity: cfg.Marble.Elasticity,
		Friction:   cfg.Marble.Friction,
	}
}

func marbleSpec(cfg *config.Config) physics.MarbleSpec {
	return physics.MarbleSpec{
		Size:           cfg.Marble.Size,
		Mass:           cfg.Marble.Mass,
		Elasticity:     cfg.Marble.Elasticity,
		Friction:       cfg.Marble.Friction,
		Damping:        cfg.Marble.Damping,
		AngularDamping: cfg.Marble.AngularDamping,
		SpawnSpeed:     cfg.Marble.SpawnSpeed,
		SpawnSpin:      cfg.Marble.SpawnSpin,
	}
}

// loopOptions caps spin so the rim of a marble never outruns the speed limit.
func loopOptions(cfg *config.Config) sim.Options {
	return sim.Options{
		Step:          cfg.Physics.Step,
		RestThreshold: cfg.Physics.RestThreshold,
		MaxSpeed:      cfg.Physics.MaxSpeed,
		MaxSpin:       cfg.Physics.MaxSpeed / (cfg.Marble.Size / 2),
		FPS:           cfg.Render.FPS,
		Smoothing:     cfg.Render.Smoothing,
	}
}
