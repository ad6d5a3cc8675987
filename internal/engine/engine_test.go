package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/olivier-w/tangle/internal/progress"
	"github.com/olivier-w/tangle/internal/ring"
)

const dt = 1.0 / 60.0

type countingBridge struct {
	ring.NopBridge
	actives []int
}

func (b *countingBridge) OnActiveChange(i int) { b.actives = append(b.actives, i) }

func seeded(t *testing.T, seed uint32, bridge ring.DragBridge) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = &seed
	e, err := New(cfg, bridge, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.Resize(640, 160)
	return e
}

// input places the knot section at top 1000 and the ring section at 3000
// in a 1000-unit viewport.
func input(offset float64) Input {
	return Input{
		Knot: progress.Sample{Offset: offset, ViewportHeight: 1000, Rect: progress.Rect{Top: 1000, Height: 400}},
		Ring: progress.Sample{Offset: offset, ViewportHeight: 1000, Rect: progress.Rect{Top: 3000, Height: 600}},
	}
}

func TestNewRejectsNonFiniteRing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ring.BaseRadius = math.Inf(1)
	if _, err := New(cfg, nil, nil); !errors.Is(err, ring.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewDerivesSpinDegrees(t *testing.T) {
	e, err := New(DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.cfg.SpinDegrees != 315 {
		t.Fatalf("expected 315 degrees for 8 items, got %v", e.cfg.SpinDegrees)
	}
	if e.ID() == "" {
		t.Fatal("expected engine id")
	}
}

func TestSeededEngineStartsAtFirstPattern(t *testing.T) {
	e := seeded(t, 5, nil)
	if f := e.Frame(input(0), dt); f.Generation != 1 {
		t.Fatalf("expected first pattern generation 1, got %d", f.Generation)
	}
	if e.knot.Seed() != 5 {
		t.Fatalf("expected knot seed 5, got %d", e.knot.Seed())
	}
}

func TestComponentWarningsCarryEngineID(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Motion.Smoothing = 2
	e, err := New(cfg, nil, slog.New(slog.NewTextHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "motion: smoothing") {
			if !strings.Contains(line, "engine="+e.ID()) {
				t.Fatalf("expected engine id on gate warning, got %q", line)
			}
			return
		}
	}
	t.Fatalf("expected gate warning in log, got %q", buf.String())
}

func TestResizeAppliesOnNextFrame(t *testing.T) {
	e, _ := New(DefaultConfig(), nil, nil)
	f := e.Frame(input(0), dt)
	if f.Path != nil {
		t.Fatal("expected no path before a size is known")
	}
	e.Resize(320, 80)
	if e.knot.Ready() {
		t.Fatal("expected resize to be applied lazily")
	}
	f = e.Frame(input(0), dt)
	if len(f.Path) != DefaultConfig().Knot.Segments+1 {
		t.Fatalf("expected full path after resize, got %d points", len(f.Path))
	}
}

func TestCenteredKnotRendersStraight(t *testing.T) {
	e := seeded(t, 42, nil)
	// Knot section centered in the viewport snaps progress to 1.
	f := e.Frame(input(700), dt)
	if f.Progress.Eased != 1 {
		t.Fatalf("expected eased progress 1, got %v", f.Progress.Eased)
	}
	for _, p := range f.Path {
		if p.Y != 80 {
			t.Fatalf("expected straight path at y=80, got %+v", p)
		}
	}
}

func TestSameSeedSameFrames(t *testing.T) {
	a, b := seeded(t, 7, nil), seeded(t, 7, nil)
	for off := 0.0; off < 1200; off += 40 {
		fa := a.Frame(input(off), dt)
		fb := b.Frame(input(off), dt)
		if !slices.Equal(fa.Path, fb.Path) {
			t.Fatalf("expected identical paths at offset %v", off)
		}
	}
}

func TestEngineSettlesAndWakes(t *testing.T) {
	e := seeded(t, 3, nil)
	var f Frame
	for range 5 {
		f = e.Frame(input(700), dt)
	}
	if !f.Settled || !e.Settled() {
		t.Fatalf("expected settled engine for static input, got %+v", f.Motion)
	}

	off := 700.0
	moving := false
	for range 30 {
		off += 10
		f = e.Frame(input(off), dt)
		moving = moving || f.Motion.IsMoving
	}
	if f.Settled {
		t.Fatal("expected scrolling to wake the engine")
	}
	if !moving {
		t.Fatal("expected scrolling to open the motion gate")
	}

	for range 300 {
		f = e.Frame(input(off), dt)
	}
	if !f.Settled {
		t.Fatal("expected engine to settle again once scrolling stops")
	}
}

func TestIdleFramesAreReproducible(t *testing.T) {
	e := seeded(t, 5, nil)
	off := 0.0
	for range 40 {
		off += 20
		e.Frame(input(off), dt)
	}
	var f Frame
	for range 300 {
		f = e.Frame(input(off), dt)
	}
	first := slices.Clone(f.Path)
	f = e.Frame(input(off), dt)
	if !slices.Equal(first, f.Path) {
		t.Fatal("expected idle frames to render identical paths")
	}
}

func TestDragMomentumAndSnap(t *testing.T) {
	b := &countingBridge{}
	e := seeded(t, 1, b)
	e.Frame(input(0), dt)

	e.BeginDrag()
	e.Drag(20, 6)
	f := e.Frame(input(0), dt)
	if !f.Rotation.IsDragging || f.Phase != ring.Dragging {
		t.Fatalf("expected dragging frame, got phase %v", f.Phase)
	}

	e.EndDrag(6)
	for range 600 {
		f = e.Frame(input(0), dt)
		if f.Phase == ring.Idle {
			break
		}
	}
	if f.Phase != ring.Idle {
		t.Fatalf("expected rotor to return to idle, got %v", f.Phase)
	}
	step := ring.StepDeg(8)
	if k := f.Rotation.AngleDeg / step; math.Abs(k-math.Round(k)) > 1e-9 {
		t.Fatalf("expected rotation on a slot, got %v", f.Rotation.AngleDeg)
	}
	if f.ActiveIndex != ring.ActiveIndex(f.Rotation.AngleDeg, 8) {
		t.Fatalf("expected active index to follow rotation, got %d", f.ActiveIndex)
	}
	if len(b.actives) == 0 {
		t.Fatal("expected active index changes to reach the bridge")
	}
}

func TestSpinStretchesRadius(t *testing.T) {
	e := seeded(t, 1, nil)
	rest := e.layout.RestRadius()
	e.BeginDrag()
	var f Frame
	for range 30 {
		e.Drag(12, 12)
		f = e.Frame(input(0), dt)
	}
	if f.Radius.Target <= rest || f.Radius.Current <= rest {
		t.Fatalf("expected spin to stretch radius beyond %v, got %+v", rest, f.Radius)
	}

	in := input(0)
	in.ReducedMotion = true
	f = e.Frame(in, dt)
	if f.Radius.Target != rest {
		t.Fatalf("expected reduced motion to drop stretch, got %v", f.Radius.Target)
	}
}

func TestHeldDragSettles(t *testing.T) {
	e := seeded(t, 1, nil)
	rest := e.layout.RestRadius()
	e.Frame(input(0), dt)

	e.BeginDrag()
	e.Drag(20, 12)
	var f Frame
	for range 300 {
		f = e.Frame(input(0), dt)
	}
	if f.Rotation.AngularVelocity != 0 || !f.Rotation.IsDragging {
		t.Fatalf("expected a still, held drag, got %+v", f.Rotation)
	}
	if f.Motion.IsMoving {
		t.Fatal("expected motion gate idle while the pointer is held still")
	}
	if f.Radius.Target != rest {
		t.Fatalf("expected radius target back at rest %v, got %v", rest, f.Radius.Target)
	}
	if !f.Settled || !e.Settled() {
		t.Fatal("expected engine to settle while the drag is held")
	}

	e.Drag(5, 5)
	if e.Settled() {
		t.Fatal("expected drag motion to wake the engine")
	}
}

func TestPinnedInsideRingWindow(t *testing.T) {
	e := seeded(t, 1, nil)
	if f := e.Frame(input(0), dt); f.Pinned {
		t.Fatal("expected ring not pinned before its window")
	}
	if f := e.Frame(input(2600), dt); !f.Pinned {
		t.Fatalf("expected ring pinned mid-window, raw %v", f.RingProgress.Raw)
	}
	if f := e.Frame(input(9000), dt); f.Pinned {
		t.Fatal("expected ring unpinned past its window")
	}
}

func TestDestroyStopsEngine(t *testing.T) {
	e := seeded(t, 1, nil)
	e.Frame(input(0), dt)
	e.Destroy()
	if !e.Closed() || !e.Settled() {
		t.Fatal("expected destroyed engine to report closed and settled")
	}
	e.BeginDrag()
	e.Drag(10, 1)
	e.Resize(10, 10)
	f := e.Frame(input(500), dt)
	if !f.Settled || f.Path != nil || f.Items != nil {
		t.Fatalf("expected empty settled frame, got %+v", f)
	}
	e.Destroy()
}
