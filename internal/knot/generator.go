package knot

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
)

const (
	straightArm   = 0.999 // progress at which the straight state latches
	straightLeave = 0.995 // falling below this after latching reseeds
)

// Config shapes the generated tangle. Radii and amplitudes are fractions
// of the container height.
type Config struct {
	Segments      int     `yaml:"segments"`
	Loops         int     `yaml:"loops"`
	Clusters      int     `yaml:"clusters"`
	Harmonics     int     `yaml:"harmonics"`
	LoopRadius    float64 `yaml:"loopRadius"`
	WaveAmplitude float64 `yaml:"waveAmplitude"`
	LoopFalloff   float64 `yaml:"loopFalloff"`
	WaveFalloff   float64 `yaml:"waveFalloff"`
	Jitter        float64 `yaml:"jitter"`
	JitterScale   float64 `yaml:"jitterScale"`
	JitterSpeed   float64 `yaml:"jitterSpeed"`
	Padding       float64 `yaml:"padding"`
}

func DefaultConfig() Config {
	return Config{
		Segments:      480,
		Loops:         9,
		Clusters:      3,
		Harmonics:     5,
		LoopRadius:    0.18,
		WaveAmplitude: 0.12,
		LoopFalloff:   1.6,
		WaveFalloff:   1.1,
		Jitter:        0.02,
		JitterScale:   3,
		JitterSpeed:   0.8,
		Padding:       0.06,
	}
}

// Sanitize clamps cfg into a renderable range, logging each correction.
func (c Config) Sanitize(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	warn := func(field string, v any) {
		logger.Warn("knot: invalid config value, clamped", slog.String("field", field), slog.Any("value", v))
	}
	if c.Segments < 1 {
		warn("segments", c.Segments)
		c.Segments = def.Segments
	}
	if c.Loops < 0 {
		warn("loops", c.Loops)
		c.Loops = 0
	}
	if c.Clusters < 1 {
		warn("clusters", c.Clusters)
		c.Clusters = 1
	}
	if c.Harmonics < 0 {
		warn("harmonics", c.Harmonics)
		c.Harmonics = 0
	}
	nonNeg := func(field string, v *float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			warn(field, *v)
			*v = 0
		}
	}
	nonNeg("loopRadius", &c.LoopRadius)
	nonNeg("waveAmplitude", &c.WaveAmplitude)
	nonNeg("jitter", &c.Jitter)
	nonNeg("jitterScale", &c.JitterScale)
	nonNeg("jitterSpeed", &c.JitterSpeed)
	if !(c.LoopFalloff > 0) || math.IsInf(c.LoopFalloff, 0) {
		warn("loopFalloff", c.LoopFalloff)
		c.LoopFalloff = def.LoopFalloff
	}
	if !(c.WaveFalloff > 0) || math.IsInf(c.WaveFalloff, 0) {
		warn("waveFalloff", c.WaveFalloff)
		c.WaveFalloff = def.WaveFalloff
	}
	if !(c.Padding >= 0) || c.Padding >= 0.5 {
		warn("padding", c.Padding)
		c.Padding = def.Padding
	}
	return c
}

// Point is one sample of the rendered path, in container units.
type Point struct {
	X float64
	Y float64
}

// Generator owns one tangle pattern and renders it as a path that
// straightens as progress approaches 1. It is not safe for concurrent use.
type Generator struct {
	cfg    Config
	logger *slog.Logger

	geo   Geometry
	rng   *LCG
	noise opensimplex.Noise

	width    float64
	height   float64
	progress float64
	motion   float64
	clock    float64

	straightArmed bool
	generation    int
	dirty         bool
	warnedUnready bool
	path          []Point
}

// New creates a generator seeded from a fresh random seed.
func New(cfg Config, logger *slog.Logger) *Generator {
	g := newGenerator(cfg, logger)
	g.InitializeRandom()
	return g
}

// NewSeeded creates a generator whose first pattern comes from seed.
func NewSeeded(cfg Config, seed uint32, logger *slog.Logger) *Generator {
	g := newGenerator(cfg, logger)
	g.Initialize(seed)
	return g
}

func newGenerator(cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg.Sanitize(logger), logger: logger}
}

// Initialize rebuilds the geometry from seed.
func (g *Generator) Initialize(seed uint32) {
	g.rng = NewLCG(seed)
	g.load(seed)
}

// InitializeRandom rebuilds the geometry from a random seed.
func (g *Generator) InitializeRandom() {
	g.Initialize(rand.Uint32())
}

func (g *Generator) load(seed uint32) {
	g.geo = Generate(seed, g.rng, g.cfg)
	g.noise = opensimplex.New(int64(seed))
	g.generation++
	g.dirty = true
}

// reseed draws the next seed from the current stream, so a run started
// from a fixed seed stays reproducible across reseeds.
func (g *Generator) reseed() {
	seed := g.rng.Uint32()
	g.load(seed)
	g.logger.Debug("knot: reseeded on leaving straight state", slog.Uint64("seed", uint64(seed)))
}

// SetSize sets the container size. Non-positive sizes defer rendering.
func (g *Generator) SetSize(width, height float64) {
	if math.IsNaN(width) {
		width = 0
	}
	if math.IsNaN(height) {
		height = 0
	}
	if width == g.width && height == g.height {
		return
	}
	g.width, g.height = width, height
	g.dirty = true
	if g.Ready() {
		g.warnedUnready = false
	}
}

// Ready reports whether the container has a usable size.
func (g *Generator) Ready() bool {
	return g.width > 0 && g.height > 0
}

// SetProgress stores progress and reseeds when it leaves the fully
// straight state. Staying at 1 never reseeds.
func (g *Generator) SetProgress(p float64) {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))
	switch {
	case p >= straightArm:
		g.straightArmed = true
	case g.straightArmed && p < straightLeave:
		g.straightArmed = false
		g.reseed()
	}
	if p != g.progress {
		g.progress = p
		g.dirty = true
	}
}

// SetMotion sets the jitter scale, normally the motion gate's latched value.
func (g *Generator) SetMotion(m float64) {
	if math.IsNaN(m) {
		m = 0
	}
	m = math.Max(0, math.Min(1, m))
	if m != g.motion {
		g.motion = m
		g.dirty = true
	}
}

// Advance moves the jitter clock. The frame loop only calls it while the
// motion gate reports movement, so idle frames render identically.
func (g *Generator) Advance(dt float64) {
	if !(dt > 0) || g.motion == 0 || g.cfg.Jitter == 0 {
		return
	}
	g.clock += dt * g.cfg.JitterSpeed
	g.dirty = true
}

// Render returns the current path of Segments+1 points. The slice is
// reused by later calls. It returns nil until the container has a size.
func (g *Generator) Render() []Point {
	if !g.Ready() {
		if !g.warnedUnready {
			g.logger.Debug("knot: container not laid out, deferring render",
				slog.Float64("width", g.width), slog.Float64("height", g.height),
				slog.Float64("progress", g.progress))
			g.warnedUnready = true
		}
		return nil
	}
	if !g.dirty && g.path != nil {
		return g.path
	}

	n := g.cfg.Segments + 1
	if cap(g.path) < n {
		g.path = make([]Point, n)
	}
	g.path = g.path[:n]

	w, h := g.width, g.height
	pad := g.cfg.Padding * math.Min(w, h)
	cy := h / 2
	left, right := pad, w-pad
	top, bottom := pad, h-pad
	if right < left {
		left, right = w/2, w/2
	}
	if bottom < top {
		top, bottom = cy, cy
	}

	rest := 1 - g.progress
	loopScale := math.Pow(rest, g.cfg.LoopFalloff)
	waveScale := math.Pow(rest, g.cfg.WaveFalloff)
	jitter := g.motion * g.cfg.Jitter * loopScale

	for i := range n {
		t := float64(i) / float64(g.cfg.Segments)
		x := left + t*(right-left)
		y := cy

		var dx, dy float64
		for _, l := range g.geo.Loops {
			if ox, oy, ok := l.offset(t); ok {
				dx += ox
				dy += oy
			}
		}
		dx *= loopScale * h
		dy *= loopScale * h
		dy += g.geo.wave(t) * waveScale * h

		if jitter > 0 {
			u := t * g.cfg.JitterScale
			dx += jitter * h * g.noise.Eval2(u+17.3, g.clock)
			dy += jitter * h * g.noise.Eval2(u, g.clock)
		}

		g.path[i] = Point{
			X: math.Max(left, math.Min(right, x+dx)),
			Y: math.Max(top, math.Min(bottom, y+dy)),
		}
	}
	g.dirty = false
	return g.path
}

// Baseline returns the straight path Render converges to at progress 1.
func (g *Generator) Baseline() []Point {
	if !g.Ready() {
		return nil
	}
	w, h := g.width, g.height
	pad := g.cfg.Padding * math.Min(w, h)
	left, right := pad, w-pad
	if right < left {
		left, right = w/2, w/2
	}
	out := make([]Point, g.cfg.Segments+1)
	for i := range out {
		t := float64(i) / float64(g.cfg.Segments)
		x := left + t*(right-left)
		out[i] = Point{X: math.Max(left, math.Min(right, x)), Y: h / 2}
	}
	return out
}

// Release drops the path buffer. The generator may still be used; the
// next Render reallocates.
func (g *Generator) Release() {
	g.path = nil
	g.dirty = true
}

func (g *Generator) Geometry() Geometry { return g.geo }
func (g *Generator) Seed() uint32       { return g.geo.Seed }
func (g *Generator) Progress() float64  { return g.progress }
func (g *Generator) Dirty() bool        { return g.dirty }

// Generation counts geometry rebuilds, including the initial one.
func (g *Generator) Generation() int { return g.generation }
