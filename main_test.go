package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-seed", "42", "-mute", "-click", "tick.wav", "-reduced-motion"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if opts.seed == nil || *opts.seed != 42 {
		t.Fatalf("expected seed 42, got %v", opts.seed)
	}
	if !opts.mute || opts.click != "tick.wav" || !opts.reducedMotion {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseArgsRejectsBadSeed(t *testing.T) {
	for _, args := range [][]string{{"-seed", "-1"}, {"-seed", "4294967296"}, {"stray"}} {
		if _, err := parseArgs(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tangle.yaml")
	if err := os.WriteFile(path, []byte("seed: 3\nfeedback:\n  volume: 0.2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	seed := uint32(11)
	cfg, err := resolve(options{configPath: path, seed: &seed, mute: true}, func(string) string { return "" })
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if *cfg.Engine.Seed != 11 {
		t.Fatalf("expected flag seed to win, got %d", *cfg.Engine.Seed)
	}
	if cfg.Feedback.Enabled || cfg.Feedback.Volume != 0.2 {
		t.Fatalf("unexpected feedback config %+v", cfg.Feedback)
	}
	if cfg.ReducedMotion {
		t.Fatal("expected reduced motion off")
	}
}

func TestResolveReducedMotionFromEnv(t *testing.T) {
	env := map[string]string{reducedMotionEnv: "1"}
	cfg, err := resolve(options{}, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if !cfg.ReducedMotion {
		t.Fatal("expected reduced motion from environment")
	}
}

func TestResolveMissingConfig(t *testing.T) {
	if _, err := resolve(options{configPath: filepath.Join(t.TempDir(), "nope.yaml")}, os.Getenv); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestSetupLoggingDisabledByDefault(t *testing.T) {
	f, logger := setupLogging(false)
	if f != nil {
		f.Close()
		t.Fatal("expected nil log file when debug is off")
	}
	if logger == nil {
		t.Fatal("expected a logger")
	}
	if log.Writer() != io.Discard {
		t.Fatalf("expected log output discarded, got %v", log.Writer())
	}
}

func TestSetupLoggingWritesDebugFile(t *testing.T) {
	t.Chdir(t.TempDir())
	f, logger := setupLogging(true)
	if f == nil {
		t.Fatal("expected log file when debug is on")
	}
	logger.Debug("hello")
	f.Close()

	info, err := os.Stat(logFileName)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected log file to contain content")
	}
}
