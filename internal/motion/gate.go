package motion

import (
	"log/slog"
	"math"
)

// refFrame is the frame duration the smoothing factor is specified at.
const refFrame = 1.0 / 60.0

// Config holds the low-pass weight and the two hysteresis gates.
type Config struct {
	Smoothing float64 `yaml:"smoothing"` // weight kept from the previous value per 60 Hz frame
	Upper     float64 `yaml:"upper"`
	Lower     float64 `yaml:"lower"`
}

// DefaultConfig returns the 0.82/0.18 filter with 0.08/0.04 gates.
func DefaultConfig() Config {
	return Config{Smoothing: 0.82, Upper: 0.08, Lower: 0.04}
}

// Sanitize clamps the filter weight into [0,1) and orders the gates.
func (c Config) Sanitize(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if math.IsNaN(c.Smoothing) || c.Smoothing < 0 || c.Smoothing >= 1 {
		logger.Warn("motion: smoothing out of range, using default", slog.Float64("value", c.Smoothing))
		c.Smoothing = def.Smoothing
	}
	if math.IsNaN(c.Upper) || math.IsNaN(c.Lower) || c.Lower < 0 || c.Upper > 1 {
		logger.Warn("motion: gates out of range, using defaults",
			slog.Float64("upper", c.Upper), slog.Float64("lower", c.Lower))
		c.Upper, c.Lower = def.Upper, def.Lower
	}
	if c.Lower > c.Upper {
		logger.Warn("motion: lower gate above upper gate, swapping",
			slog.Float64("upper", c.Upper), slog.Float64("lower", c.Lower))
		c.Upper, c.Lower = c.Lower, c.Upper
	}
	return c
}

// State is the gate output for one frame.
type State struct {
	Instantaneous float64 // smoothed per-frame velocity in [0,1]
	Latched       float64 // follows Instantaneous while moving, held while idle
	IsMoving      bool
}

// Gate turns noisy velocity into a latched moving/idle state. Values
// between the lower and upper gate never change IsMoving.
type Gate struct {
	cfg   Config
	state State
}

// NewGate creates a gate in the settled state (Latched = 1, idle).
// Config repairs are logged to logger; nil uses slog.Default.
func NewGate(cfg Config, logger *slog.Logger) *Gate {
	return &Gate{
		cfg:   cfg.Sanitize(logger),
		state: State{Latched: 1},
	}
}

// Update feeds one velocity sample taken over dt seconds.
func (g *Gate) Update(instantaneous, dt float64) State {
	if math.IsNaN(instantaneous) {
		instantaneous = 0
	}
	instantaneous = math.Max(0, math.Min(1, instantaneous))
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = refFrame
	}

	s := instantaneous
	if alpha := 1 - math.Pow(g.cfg.Smoothing, dt/refFrame); alpha < 1 {
		s = g.state.Instantaneous + (instantaneous-g.state.Instantaneous)*alpha
	}
	g.state.Instantaneous = s

	switch {
	case s > g.cfg.Upper:
		g.state.IsMoving = true
		g.state.Latched = s
	case s < g.cfg.Lower:
		g.state.IsMoving = false
	default:
		if g.state.IsMoving {
			g.state.Latched = s
		}
	}
	return g.state
}

// Reset unlocks the latch: Latched drops to the current smoothed value
// and the gate goes idle.
func (g *Gate) Reset() State {
	g.state.Latched = g.state.Instantaneous
	g.state.IsMoving = false
	return g.state
}

// State returns the current output without advancing the filter.
func (g *Gate) State() State { return g.state }

// Config returns the sanitized configuration.
func (g *Gate) Config() Config { return g.cfg }
