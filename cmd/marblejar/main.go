package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/san-kum/marblejar/internal/config"
	"github.com/san-kum/marblejar/internal/jar"
	"github.com/san-kum/marblejar/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	themeName  string
	seed       uint64
	anyTime    bool
	force      bool
	frames     uint64
	realtime   bool
	scenario   string
	svgPath    string
	format     string
	output     string
	limit      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "marblejar",
		Short:         "a jar of marbles, one per day",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runJar,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&themeName, "theme", viz.ThemeClassic.Name, "color theme")
	pf.Uint64Var(&seed, "seed", 0, "random seed for spawn positions (0 = time based)")
	rootCmd.Flags().BoolVar(&anyTime, "any-time", false, "allow drops at any hour")

	dropCmd := &cobra.Command{
		Use:       "drop <red|green>",
		Short:     "drop today's marble",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"red", "green"},
		RunE:      dropMarble,
	}
	dropCmd.Flags().BoolVar(&force, "force", false, "drop even if today's marble is in")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list dropped marbles",
		RunE:  listHistory,
	}
	historyCmd.Flags().IntVar(&limit, "limit", 0, "show only the last n marbles")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "show how the jar is doing",
		RunE:  showStats,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "replay the jar headless and print where marbles land",
		RunE:  simulate,
	}
	simulateCmd.Flags().Uint64Var(&frames, "frames", 600, "frames to run")
	simulateCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames at the render fps")
	simulateCmd.Flags().StringVar(&scenario, "scenario", "", "scenario file with scripted drops (yaml)")
	simulateCmd.Flags().StringVar(&svgPath, "svg", "", "write a snapshot of the final jar")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export history",
		RunE:  exportHistory,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json or csv")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(dropCmd, historyCmd, statsCmd, simulateCmd, exportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves defaults, then the preset, then the config file, then flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("seed") {
		cfg.Physics.Seed = seed
	}
	if flags.Changed("any-time") {
		cfg.Schedule.AnyTime = anyTime
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes to --log-file when given. Otherwise it writes to stderr, or nowhere
// when the TUI owns the terminal.
func newLogger(tui bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closeFn = f, func() { f.Close() }
	case tui:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "marblejar",
	})
	return logger, closeFn, nil
}

// openSession builds and mounts a session and loads the saved history.
func openSession(ctx context.Context, cmd *cobra.Command, tui bool, opts ...jar.Option) (*jar.Session, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := newLogger(tui)
	if err != nil {
		return nil, nil, err
	}

	s, err := jar.New(cfg, append([]jar.Option{jar.WithLogger(logger)}, opts...)...)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	if err := s.Mount(ctx); err != nil {
		closeLog()
		return nil, nil, err
	}
	if err := s.Load(); err != nil {
		s.Unmount()
		closeLog()
		return nil, nil, err
	}

	cleanup := func() {
		if err := s.Unmount(); err != nil {
			logger.Error("closing jar", "err", err)
		}
		closeLog()
	}
	return s, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runJar(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, cleanup, err := openSession(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	theme := viz.GetTheme(themeName)
	if !strings.EqualFold(theme.Name, themeName) {
		return fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
	}
	if err := viz.Run(s, theme); err != nil {
		return fmt.Errorf("error running jar: %w", err)
	}
	return nil
}
