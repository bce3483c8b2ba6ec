package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/san-kum/marblejar/internal/jar"
	"github.com/san-kum/marblejar/internal/marble"
	"github.com/san-kum/marblejar/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario runs no frames")

// Scenario is a scripted sequence of drops replayed against a headless jar.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Frames      uint64 `yaml:"frames"`
	Drops       []Drop `yaml:"drops"`
}

// Drop adds one marble just before the given frame runs.
type Drop struct {
	Frame uint64       `yaml:"frame"`
	Color marble.Color `yaml:"color"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks colors and fills Frames from the last drop when unset.
func (s *Scenario) Validate() error {
	for i, d := range s.Drops {
		if !d.Color.Valid() {
			return fmt.Errorf("automation: drop %d: %w", i+1, marble.ErrUnknownColor)
		}
	}
	slices.SortStableFunc(s.Drops, func(a, b Drop) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})
	if s.Frames == 0 && len(s.Drops) > 0 {
		s.Frames = s.Drops[len(s.Drops)-1].Frame + 1
	}
	if s.Frames == 0 {
		return ErrEmptyScenario
	}
	return nil
}

// Result is the state of the jar after a scenario.
type Result struct {
	Name    string
	Frames  uint64
	Dropped int
	Resting bool
	// SettledAt is the frame from which every marble stayed at rest, or 0 if the jar
	// was still moving at the end.
	SettledAt uint64
	Marbles   []MarbleState
	Elapsed   time.Duration
}

type MarbleState struct {
	ID     uint64
	Color  marble.Color
	Visual sim.Visual
}

// RunScenario replays s on a mounted session through a sim.Runner. Drops are posted to
// the runner before the frame they belong to. interval paces frames; zero runs them
// back to back.
func RunScenario(ctx context.Context, session *jar.Session, s *Scenario, interval time.Duration) (*Result, error) {
	if !session.Mounted() {
		return nil, jar.ErrNotMounted
	}

	start := time.Now()
	frames := make(chan time.Time)
	runner := sim.Start(ctx, session.Loop(), frames)
	defer runner.Stop()

	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	res := &Result{Name: s.Name}
	var settledAt uint64
	watch := sim.ObserverFunc(func(frame uint64, marbles []*sim.Marble) {
		for _, m := range marbles {
			if !m.Resting() {
				settledAt = 0
				return
			}
		}
		if settledAt == 0 && len(marbles) > 0 {
			settledAt = frame
		}
	})
	if err := runner.Call(func(l *sim.Loop) { l.AddObserver(watch) }); err != nil {
		return res, err
	}

	next := 0
	for frame := uint64(0); frame < s.Frames; frame++ {
		for next < len(s.Drops) && s.Drops[next].Frame <= frame {
			d := s.Drops[next]
			var dropErr error
			if err := runner.Call(func(*sim.Loop) { _, dropErr = session.Append(d.Color) }); err != nil {
				return res, err
			}
			if dropErr != nil {
				return res, &DropError{Frame: d.Frame, Color: d.Color, Wrapped: dropErr}
			}
			res.Dropped++
			next++
		}

		var now time.Time
		if ticker != nil {
			select {
			case now = <-ticker.C:
			case <-ctx.Done():
				return res, ctx.Err()
			}
		} else {
			now = time.Now()
		}
		select {
		case frames <- now:
		case <-runner.Done():
			return res, ctx.Err()
		}
	}

	err := runner.Call(func(l *sim.Loop) {
		res.Frames = l.Frame()
		res.Resting = l.Resting()
		res.SettledAt = settledAt
		for _, m := range l.Marbles() {
			res.Marbles = append(res.Marbles, MarbleState{ID: m.ID, Color: m.Color, Visual: m.Visual})
		}
	})
	res.Elapsed = time.Since(start)
	return res, err
}
