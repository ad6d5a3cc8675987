package progress

import (
	"log/slog"
	"math"
)

// Rect is an element's vertical extent in document coordinates.
type Rect struct {
	Top    float64
	Height float64
}

// Sample is one frame of scroll geometry from the host view.
type Sample struct {
	Offset         float64 // document scroll offset
	ViewportHeight float64
	Rect           Rect
}

// State is the mapped progress for one frame.
type State struct {
	Raw       float64 // clamped linear ratio across the mapped window
	Eased     float64 // eased value, boosted by center proximity
	Proximity float64 // center proximity term in [0,1]
}

// Config controls how scroll geometry maps to progress.
type Config struct {
	// StartRatio is the fraction of the viewport height at which the
	// element's top yields progress 0.
	StartRatio float64 `yaml:"startRatio"`
	// EndRatio is the fraction of the element height (negative means past
	// the viewport top) at which progress reaches 1.
	EndRatio    float64 `yaml:"endRatio"`
	CenterPower float64 `yaml:"centerPower"`
	CenterSnap  float64 `yaml:"centerSnap"`
	CenterBoost bool    `yaml:"centerBoost"`
}

// DefaultConfig returns the editorial defaults.
func DefaultConfig() Config {
	return Config{
		StartRatio:  0.95,
		EndRatio:    -0.15,
		CenterPower: 2.0,
		CenterSnap:  0.04,
		CenterBoost: true,
	}
}

// Sanitize replaces unusable values with defaults and logs what it changed.
func (c Config) Sanitize(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if !finite(c.StartRatio) {
		logger.Warn("progress: invalid start ratio, using default", slog.Float64("value", c.StartRatio))
		c.StartRatio = def.StartRatio
	}
	if !finite(c.EndRatio) {
		logger.Warn("progress: invalid end ratio, using default", slog.Float64("value", c.EndRatio))
		c.EndRatio = def.EndRatio
	}
	if !finite(c.CenterPower) || c.CenterPower <= 0 {
		logger.Warn("progress: center power must be positive", slog.Float64("value", c.CenterPower))
		c.CenterPower = def.CenterPower
	}
	if !finite(c.CenterSnap) || c.CenterSnap < 0 {
		logger.Warn("progress: center snap must be non-negative", slog.Float64("value", c.CenterSnap))
		c.CenterSnap = 0
	}
	return c
}

// Mapper converts scroll samples into progress. It keeps only the
// previous eased value, for velocity estimation.
type Mapper struct {
	cfg    Config
	logger *slog.Logger

	last    State
	prev    float64
	mapped  bool
	unready bool
}

// NewMapper creates a Mapper with a sanitized copy of cfg.
func NewMapper(cfg Config, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{cfg: cfg.Sanitize(logger), logger: logger}
}

// Map computes progress for s. A sample with no viewport height holds the
// previous state until the surface has been laid out.
func (m *Mapper) Map(s Sample) State {
	s = m.scrub(s)
	if s.ViewportHeight <= 0 {
		if !m.unready {
			m.logger.Debug("progress: viewport not laid out, holding state")
			m.unready = true
		}
		m.prev = m.last.Eased
		return m.last
	}
	m.unready = false

	st := Compute(m.cfg, s)
	if m.mapped {
		m.prev = m.last.Eased
	} else {
		m.prev = st.Eased
		m.mapped = true
	}
	m.last = st
	return st
}

// Last returns the most recently mapped state.
func (m *Mapper) Last() State { return m.last }

// Delta returns how much the eased progress changed on the last Map call.
func (m *Mapper) Delta() float64 { return m.last.Eased - m.prev }

func (m *Mapper) scrub(s Sample) Sample {
	fix := func(name string, v float64) float64 {
		if finite(v) {
			return v
		}
		m.logger.Warn("progress: non-finite geometry treated as zero", slog.String("field", name))
		return 0
	}
	s.Offset = fix("offset", s.Offset)
	s.ViewportHeight = fix("viewportHeight", s.ViewportHeight)
	s.Rect.Top = fix("rect.top", s.Rect.Top)
	s.Rect.Height = fix("rect.height", s.Rect.Height)
	return s
}

// Compute is the pure mapping behind Mapper.Map. s must contain finite
// values and a positive viewport height.
func Compute(cfg Config, s Sample) State {
	top := s.Rect.Top - s.Offset
	start := cfg.StartRatio * s.ViewportHeight
	end := cfg.EndRatio * s.Rect.Height

	var raw float64
	if span := start - end; span > 0 {
		raw = clamp01((start - top) / span)
	} else if top <= end {
		raw = 1
	}

	st := State{Raw: raw, Eased: EaseInOutQuad(raw)}
	if !cfg.CenterBoost {
		return st
	}

	half := s.ViewportHeight / 2
	center := top + s.Rect.Height/2
	d := clamp01(math.Abs(center-half) / half)
	st.Proximity = math.Pow(1-d, cfg.CenterPower)
	if d < cfg.CenterSnap {
		st.Proximity = 1
		st.Eased = 1
		return st
	}
	st.Eased = math.Max(st.Eased, st.Proximity)
	return st
}

// EaseInOutQuad is the quadratic ease-in-out curve on [0,1].
func EaseInOutQuad(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// EaseOutCubic decelerates to rest at t=1.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
