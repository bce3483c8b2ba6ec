package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/marblejar/internal/automation"
	"github.com/san-kum/marblejar/internal/config"
	"github.com/san-kum/marblejar/internal/export"
	"github.com/san-kum/marblejar/internal/jar"
	"github.com/san-kum/marblejar/internal/marble"
	"github.com/san-kum/marblejar/internal/metrics"
	"github.com/san-kum/marblejar/internal/store"
	"github.com/san-kum/marblejar/internal/viz"
	"github.com/spf13/cobra"
)

func dropMarble(cmd *cobra.Command, args []string) error {
	color, err := marble.ParseColor(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	s, cleanup, err := openSession(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if !force && !s.CanDrop() {
		return fmt.Errorf("too early: next marble at %s (use --force to drop anyway)",
			s.NextDrop().Format("Mon Jan 2 15:04"))
	}
	m, err := s.Append(color)
	if err != nil {
		return err
	}
	fmt.Printf("dropped %s marble #%d, %d%% good\n", color, m.ID, s.Stats().PercentGood)
	if !s.Persisting() {
		return fmt.Errorf("history at %s could not be read; the marble was not saved", s.StorePath())
	}
	return nil
}

// loadRecords reads the history without mounting a jar. It never touches the file, even
// when it is corrupt; the next mounted session moves a corrupt file aside.
func loadRecords(cmd *cobra.Command) (*config.Config, []marble.Record, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(cfg.DataDir, cfg.FileName)
	records, err := st.Read()
	if err != nil && !errors.Is(err, store.ErrNotExist) {
		return cfg, nil, err
	}
	return cfg, records, nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	_, records, err := loadRecords(cmd)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no marbles yet")
		return nil
	}

	start := 0
	if limit > 0 && limit < len(records) {
		start = len(records) - limit
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDATE\tTIME\tCOLOR")
	for i, r := range records[start:] {
		t := r.Time()
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", start+i+1, t.Format("2006-01-02"), t.Format("15:04:05"), r.Color)
	}
	return w.Flush()
}

func showStats(cmd *cobra.Command, args []string) error {
	cfg, records, err := loadRecords(cmd)
	if err != nil {
		return err
	}
	s := metrics.Summarize(records, cfg.Stats.Window, cfg.Stats.Alpha)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "marbles\t%d\n", s.Total)
	fmt.Fprintf(w, "green\t%d\n", s.Good)
	fmt.Fprintf(w, "good\t%d%%\n", s.PercentGood)
	if s.Total > 0 {
		running := metrics.Collect(records,
			metrics.NewMovingAverage(cfg.Stats.Window),
			metrics.NewExponentialAverage(cfg.Stats.Alpha))
		fmt.Fprintf(w, "last %d\t%.0f%%\n", cfg.Stats.Window, running["moving_average"]*100)
		fmt.Fprintf(w, "ema\t%.0f%%\n", running["ema"]*100)
		fmt.Fprintf(w, "last drop\t%s\n", s.LastDrop.Format("2006-01-02 15:04"))
	}
	if cfg.Schedule.AnyTime || metrics.CanDrop(time.Now(), s.LastDrop, cfg.Schedule.DropHour) {
		fmt.Fprintln(w, "next drop\tnow")
	} else {
		fmt.Fprintf(w, "next drop\tfrom %02d:00\n", cfg.Schedule.DropHour)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(s.EMA) > 1 {
		fmt.Println()
		fmt.Println(viz.EMAChart(s.EMA, 60, 8))
	}
	return nil
}

func simulate(cmd *cobra.Command, args []string) error {
	var sc *automation.Scenario
	if scenario != "" {
		loaded, err := automation.LoadScenario(scenario)
		if err != nil {
			return err
		}
		sc = loaded
		if cmd.Flags().Changed("frames") {
			sc.Frames = frames
		}
	} else {
		sc = &automation.Scenario{Name: "replay", Frames: frames}
		if err := sc.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()
	s, cleanup, err := openSession(ctx, cmd, false, jar.WithReadOnly())
	if err != nil {
		return err
	}
	defer cleanup()

	var interval time.Duration
	if realtime {
		interval = time.Second / time.Duration(s.Config().Render.FPS)
	}

	res, err := automation.RunScenario(ctx, s, sc, interval)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("%s: %d frames, %d dropped, resting=%v (%s)\n",
		res.Name, res.Frames, res.Dropped, res.Resting, res.Elapsed.Round(time.Millisecond))
	if res.SettledAt > 0 {
		fmt.Printf("settled at frame %d\n", res.SettledAt)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOLOR\tX\tY\tROT")
	for _, m := range res.Marbles {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\n", m.ID, m.Color, m.Visual.X, m.Visual.Y, m.Visual.Rotation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return err
		}
		defer f.Close()
		cfg := s.Config()
		if err := export.JarToSVG(f, s.Marbles(), cfg.Playfield.Width, cfg.Playfield.Height, cfg.Marble.Size, viz.GetTheme(themeName)); err != nil {
			return err
		}
		fmt.Printf("snapshot written to %s\n", svgPath)
	}
	return nil
}

func exportHistory(cmd *cobra.Command, args []string) error {
	_, records, err := loadRecords(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return store.ExportJSON(w, records)
	case "csv":
		return store.ExportCSV(w, records)
	default:
		return fmt.Errorf("unknown format: %s (json or csv)", format)
	}
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "marblejar.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("config written to %s\n", path)
	return nil
}
