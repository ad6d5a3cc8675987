package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/tangle/internal/config"
	"github.com/olivier-w/tangle/internal/engine"
	"github.com/olivier-w/tangle/internal/feedback"
	"github.com/olivier-w/tangle/internal/ring"
	"github.com/olivier-w/tangle/internal/ui"
)

const (
	logFileName      = "tangle-debug.log"
	reducedMotionEnv = "TANGLE_REDUCED_MOTION"
)

type options struct {
	configPath    string
	seed          *uint32
	debug         bool
	mute          bool
	click         string
	reducedMotion bool
	dumpConfig    bool
}

func parseArgs(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("tangle", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.Func("seed", "fix the knot pattern seed", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("seed must be an unsigned 32-bit integer: %w", err)
		}
		seed := uint32(v)
		opts.seed = &seed
		return nil
	})
	fs.BoolVar(&opts.debug, "debug", false, "write debug logs to "+logFileName)
	fs.BoolVar(&opts.mute, "mute", false, "disable the ring click")
	fs.StringVar(&opts.click, "click", "", "click sample (.mp3, .wav, .ogg or .flac)")
	fs.BoolVar(&opts.reducedMotion, "reduced-motion", false, "disable jitter, elastic radius and smooth scroll")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "print the effective config as YAML and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

// resolve loads the config file, if any, and applies flag and environment
// overrides on top.
func resolve(opts options, getenv func(string) string) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if opts.seed != nil {
		cfg.Engine.Seed = opts.seed
	}
	if opts.debug {
		cfg.Debug = true
	}
	if opts.mute {
		cfg.Feedback.Enabled = false
	}
	if opts.click != "" {
		cfg.Feedback.Sample = opts.click
	}
	if opts.reducedMotion || envTrue(getenv(reducedMotionEnv)) {
		cfg.ReducedMotion = true
	}
	return cfg, nil
}

func envTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// setupLogging sends logs to a debug file when enabled. The TUI owns the
// terminal, so otherwise everything is discarded.
func setupLogging(debug bool) (*os.File, *slog.Logger) {
	if !debug {
		log.SetOutput(io.Discard)
		return nil, slog.New(slog.DiscardHandler)
	}
	f, err := tea.LogToFile(logFileName, "tangle")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open %s: %v\n", logFileName, err)
		log.SetOutput(io.Discard)
		return nil, slog.New(slog.DiscardHandler)
	}
	return f, slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := resolve(opts, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.dumpConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logFile, logger := setupLogging(cfg.Debug)
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	var bridge ring.DragBridge = ring.NopBridge{}
	clicker, err := feedback.New(cfg.Feedback, logger)
	if err != nil {
		logger.Warn("feedback: click disabled", slog.Any("error", err))
	} else {
		defer clicker.Close()
		bridge = clicker
	}

	e, err := engine.New(cfg.Engine, bridge, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer e.Destroy()
	logger.Info("engine started", slog.String("id", e.ID()), slog.Bool("reducedMotion", cfg.ReducedMotion))

	m := ui.New(e, ui.Options{ReducedMotion: cfg.ReducedMotion})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
