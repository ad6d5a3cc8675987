package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/olivier-w/tangle/internal/ring"
)

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	src := `
seed: 42
progress:
  startRatio: 0.9
ring:
  totalItems: 6
  orientation: vertical
  enableSnap: false
feedback:
  enabled: false
reducedMotion: true
`
	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def := Default()
	if cfg.Engine.Seed == nil || *cfg.Engine.Seed != 42 {
		t.Fatalf("expected seed 42, got %v", cfg.Engine.Seed)
	}
	if cfg.Engine.Progress.StartRatio != 0.9 {
		t.Fatalf("expected start ratio 0.9, got %v", cfg.Engine.Progress.StartRatio)
	}
	if cfg.Engine.Progress.EndRatio != def.Engine.Progress.EndRatio || !cfg.Engine.Progress.CenterBoost {
		t.Fatalf("expected untouched progress keys to keep defaults, got %+v", cfg.Engine.Progress)
	}
	if cfg.Engine.Ring.TotalItems != 6 || cfg.Engine.Ring.Orientation != ring.Vertical || cfg.Engine.Ring.EnableSnap {
		t.Fatalf("unexpected ring config %+v", cfg.Engine.Ring)
	}
	if cfg.Engine.Ring.ItemWidth != def.Engine.Ring.ItemWidth {
		t.Fatalf("expected default item width, got %v", cfg.Engine.Ring.ItemWidth)
	}
	if cfg.Feedback.Enabled || cfg.Feedback.Volume != def.Feedback.Volume {
		t.Fatalf("unexpected feedback config %+v", cfg.Feedback)
	}
	if !cfg.ReducedMotion {
		t.Fatal("expected reduced motion")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("ring:\n  spokes: 3\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsBadOrientation(t *testing.T) {
	if _, err := Parse(strings.NewReader("ring:\n  orientation: sideways\n")); err == nil {
		t.Fatal("expected error for unknown orientation")
	}
}

func TestLoadRoundTripsWrite(t *testing.T) {
	cfg := Default()
	seed := uint32(9)
	cfg.Engine.Seed = &seed
	cfg.Engine.Knot.Loops = 4

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "tangle.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("expected %+v, got %+v", cfg, got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
