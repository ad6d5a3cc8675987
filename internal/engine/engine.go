package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/olivier-w/tangle/internal/knot"
	"github.com/olivier-w/tangle/internal/motion"
	"github.com/olivier-w/tangle/internal/progress"
	"github.com/olivier-w/tangle/internal/ring"
)

const (
	refFrame = 1.0 / 60.0
	restEps  = 0.01
)

// Config bundles the component configs. It is read once by New.
type Config struct {
	Progress     progress.Config `yaml:"progress"`
	RingProgress progress.Config `yaml:"ringProgress"`
	Motion       motion.Config   `yaml:"motion"`
	Knot         knot.Config     `yaml:"knot"`
	Ring         ring.Config     `yaml:"ring"`

	// Seed fixes the knot pattern; nil picks a random one.
	Seed *uint32 `yaml:"seed"`
	// ScrollGain converts eased progress change per frame into the
	// motion gate's [0,1] velocity.
	ScrollGain float64 `yaml:"scrollGain"`
	// SpinDegrees is how far the ring turns across its scroll window.
	// Zero means one step short of a full turn, ending on the last item.
	SpinDegrees float64 `yaml:"spinDegrees"`
}

func DefaultConfig() Config {
	ringProgress := progress.DefaultConfig()
	ringProgress.CenterBoost = false
	return Config{
		Progress:     progress.DefaultConfig(),
		RingProgress: ringProgress,
		Motion:       motion.DefaultConfig(),
		Knot:         knot.DefaultConfig(),
		Ring:         ring.DefaultConfig(),
		ScrollGain:   14,
	}
}

// Input is the raw host signal for one frame.
type Input struct {
	Knot          progress.Sample // geometry of the knot section
	Ring          progress.Sample // geometry of the ring section
	ReducedMotion bool
}

// Frame is everything the presentation layer needs for one redraw.
type Frame struct {
	Progress     progress.State
	RingProgress progress.State
	Motion       motion.State
	Path         []knot.Point // reused across frames; nil until sized
	Items        []ring.Item  // reused across frames
	Rotation     ring.RotationState
	Radius       ring.RadiusState
	Phase        ring.Phase
	ActiveIndex  int
	Pinned       bool // ring section is inside its scroll window
	Settled      bool // nothing will change until input changes
	Generation   int
}

// Engine composes the progress mapper, motion gate, knot generator and
// ring layout, and updates them in a fixed order once per frame. It is
// owned by a single frame loop and is not safe for concurrent use.
type Engine struct {
	id     string
	cfg    Config
	logger *slog.Logger

	mapper     *progress.Mapper
	ringMapper *progress.Mapper
	gate       *motion.Gate
	knot       *knot.Generator
	layout     *ring.Layout
	rotor      *ring.Rotor
	radius     ring.RadiusState

	width, height float64
	sizeStale     bool

	last    Frame
	primed  bool
	settled bool
	closed  bool
}

// New builds an engine. It fails only when the ring config holds values
// that cannot be clamped; other bad values are repaired with a warning.
func New(cfg Config, bridge ring.DragBridge, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With(slog.String("engine", id))

	layout, err := ring.NewLayout(cfg.Ring, logger)
	if err != nil {
		return nil, fmt.Errorf("building ring layout: %w", err)
	}
	if !(cfg.ScrollGain > 0) || math.IsInf(cfg.ScrollGain, 0) {
		logger.Warn("engine: scroll gain must be positive, using default", slog.Float64("value", cfg.ScrollGain))
		cfg.ScrollGain = DefaultConfig().ScrollGain
	}
	if math.IsNaN(cfg.SpinDegrees) || math.IsInf(cfg.SpinDegrees, 0) {
		logger.Warn("engine: spin degrees not finite, using default")
		cfg.SpinDegrees = 0
	}
	if cfg.SpinDegrees == 0 {
		n := layout.Config().TotalItems
		cfg.SpinDegrees = ring.StepDeg(n) * float64(n-1)
	}

	var gen *knot.Generator
	if cfg.Seed != nil {
		gen = knot.NewSeeded(cfg.Knot, *cfg.Seed, logger)
	} else {
		gen = knot.New(cfg.Knot, logger)
	}

	e := &Engine{
		id:         id,
		cfg:        cfg,
		logger:     logger,
		mapper:     progress.NewMapper(cfg.Progress, logger),
		ringMapper: progress.NewMapper(cfg.RingProgress, logger),
		gate:       motion.NewGate(cfg.Motion, logger),
		knot:       gen,
		layout:     layout,
		rotor:      ring.NewRotor(layout.Config(), bridge),
		radius:     ring.NewRadiusState(layout.Config()),
	}
	logger.Debug("engine: created",
		slog.Uint64("seed", uint64(gen.Seed())),
		slog.Int("items", layout.Config().TotalItems),
		slog.Float64("restRadius", layout.RestRadius()))
	return e, nil
}

// ID identifies the engine in logs.
func (e *Engine) ID() string { return e.id }

// Layout exposes the ring layout for transform building and projection.
func (e *Engine) Layout() *ring.Layout { return e.layout }

// Resize records a new knot surface size. The generator picks it up on
// the next frame.
func (e *Engine) Resize(width, height float64) {
	if e.closed || (width == e.width && height == e.height) {
		return
	}
	e.width, e.height = width, height
	e.sizeStale = true
	e.settled = false
}

// Reseed replaces the knot pattern with a random one.
func (e *Engine) Reseed() {
	if e.closed {
		return
	}
	e.knot.InitializeRandom()
	e.settled = false
}

// BeginDrag starts a pointer drag on the ring.
func (e *Engine) BeginDrag() {
	if e.closed {
		return
	}
	e.rotor.BeginDrag()
	e.settled = false
}

// Drag rotates the ring by dx degrees; velocity is in degrees per frame.
func (e *Engine) Drag(dx, velocity float64) {
	if e.closed {
		return
	}
	e.rotor.Drag(dx, velocity)
	e.settled = false
}

// EndDrag releases the drag with the given velocity.
func (e *Engine) EndDrag(velocity float64) {
	if e.closed {
		return
	}
	e.rotor.EndDrag(velocity)
	e.settled = false
}

// Frame advances every component by dt seconds: motion, then progress,
// then layout, then the knot render.
func (e *Engine) Frame(in Input, dt float64) Frame {
	if e.closed {
		return Frame{Settled: true}
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = refFrame
	}
	if e.sizeStale {
		e.knot.SetSize(e.width, e.height)
		e.sizeStale = false
	}

	ps := e.mapper.Map(in.Knot)
	rs := e.ringMapper.Map(in.Ring)

	ms := e.gate.Update(e.velocity(dt), dt)
	if e.primed && ps.Eased != e.last.Progress.Eased && (ps.Eased == 0 || ps.Eased == 1) {
		ms = e.gate.Reset()
	}

	if in.ReducedMotion {
		e.knot.SetMotion(0)
	} else {
		e.knot.SetMotion(ms.Latched)
		if ms.IsMoving {
			e.knot.Advance(dt)
		}
	}
	e.knot.SetProgress(ps.Eased)

	e.rotor.Scroll(rs.Raw * e.cfg.SpinDegrees)
	e.rotor.Step(dt)
	rot := e.rotor.State()
	e.radius = ring.DynamicRadius(e.radius, e.layout.Config(), rot.AngularVelocity, dt, in.ReducedMotion)
	items := e.layout.Items(rot.AngleDeg, e.radius.Current)

	path := e.knot.Render()

	settled := e.primed &&
		!ms.IsMoving &&
		ps == e.last.Progress &&
		rs == e.last.RingProgress &&
		(e.rotor.Phase() == ring.Idle || (rot.IsDragging && rot.AngularVelocity == 0)) &&
		e.radius.AtRest(restEps) &&
		(!e.knot.Ready() || !e.knot.Dirty())

	f := Frame{
		Progress:     ps,
		RingProgress: rs,
		Motion:       ms,
		Path:         path,
		Items:        items,
		Rotation:     rot,
		Radius:       e.radius,
		Phase:        e.rotor.Phase(),
		ActiveIndex:  e.rotor.ActiveIndex(),
		Pinned:       rs.Raw > 0 && rs.Raw < 1,
		Settled:      settled,
		Generation:   e.knot.Generation(),
	}
	if settled && !e.settled {
		e.logger.Debug("engine: settled", slog.Float64("progress", ps.Eased), slog.Int("active", f.ActiveIndex))
	}
	e.last = f
	e.primed = true
	e.settled = settled
	return f
}

// velocity is the gate input: the faster of scroll and spin, each
// normalized to [0,1].
func (e *Engine) velocity(dt float64) float64 {
	perFrame := refFrame / dt
	scroll := math.Max(math.Abs(e.mapper.Delta()), math.Abs(e.ringMapper.Delta())) * e.cfg.ScrollGain * perFrame

	var spin float64
	if vi := e.layout.Config().VelocityInfluence; vi > 0 {
		spin = math.Abs(e.rotor.State().AngularVelocity) / vi
	}
	return math.Min(1, math.Max(scroll, spin))
}

// Settled reports whether the last frame was visually static. Frame
// schedulers stop requesting frames while it is true.
func (e *Engine) Settled() bool { return e.closed || e.settled }

// Last returns the most recent frame.
func (e *Engine) Last() Frame { return e.last }

// Closed reports whether Destroy has been called.
func (e *Engine) Closed() bool { return e.closed }

// Destroy releases the frame buffers. Later calls on the engine are
// no-ops and Frame returns an empty settled frame.
func (e *Engine) Destroy() {
	if e.closed {
		return
	}
	e.closed = true
	e.knot.Release()
	e.layout.Release()
	e.rotor.SetBridge(nil)
	e.last = Frame{Settled: true}
	e.logger.Debug("engine: destroyed")
}
