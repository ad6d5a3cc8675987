package ring

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// ErrInvalidConfig is returned when a configuration cannot be repaired.
var ErrInvalidConfig = errors.New("invalid ring config")

// Orientation selects the axis the ring spins around.
type Orientation uint8

const (
	Horizontal Orientation = iota // items spread left/right, spin about Y
	Vertical                      // items spread up/down, spin about X
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// UnmarshalText accepts "horizontal" or "vertical".
func (o *Orientation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "horizontal", "h":
		*o = Horizontal
	case "vertical", "v":
		*o = Vertical
	default:
		return fmt.Errorf("unknown orientation %q", text)
	}
	return nil
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Config describes the ring. It is fixed once a Layout is built.
type Config struct {
	TotalItems        int         `yaml:"totalItems"`
	BaseRadius        float64     `yaml:"baseRadius"`
	ItemWidth         float64     `yaml:"itemWidth"`
	ItemHeight        float64     `yaml:"itemHeight"`
	MinGap            float64     `yaml:"minGap"`
	Orientation       Orientation `yaml:"orientation"`
	Elasticity        float64     `yaml:"elasticity"`
	VelocityInfluence float64     `yaml:"velocityInfluence"` // deg/frame at which stretch saturates
	SpringStiffness   float64     `yaml:"springStiffness"`
	SpringDamping     float64     `yaml:"springDamping"`
	Friction          float64     `yaml:"friction"`       // momentum kept per 60 Hz frame
	MinVelocity       float64     `yaml:"minVelocity"`    // deg/frame below which momentum ends
	SettleDuration    float64     `yaml:"settleDuration"` // seconds
	EnableSnap        bool        `yaml:"enableSnap"`
	SoftSnap          float64     `yaml:"softSnap"` // pull toward the snap angle while scrolling, 0..1
}

func DefaultConfig() Config {
	return Config{
		TotalItems:        8,
		BaseRadius:        260,
		ItemWidth:         240,
		ItemHeight:        320,
		MinGap:            24,
		Orientation:       Horizontal,
		Elasticity:        0.12,
		VelocityInfluence: 12,
		SpringStiffness:   170,
		SpringDamping:     26,
		Friction:          0.92,
		MinVelocity:       0.05,
		SettleDuration:    0.35,
		EnableSnap:        true,
		SoftSnap:          0.35,
	}
}

// Validate rejects values no clamp can make sense of.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"baseRadius", c.BaseRadius},
		{"itemWidth", c.ItemWidth},
		{"itemHeight", c.ItemHeight},
		{"minGap", c.MinGap},
		{"elasticity", c.Elasticity},
		{"velocityInfluence", c.VelocityInfluence},
		{"springStiffness", c.SpringStiffness},
		{"springDamping", c.SpringDamping},
		{"friction", c.Friction},
		{"minVelocity", c.MinVelocity},
		{"settleDuration", c.SettleDuration},
		{"softSnap", c.SoftSnap},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.Orientation > Vertical {
		return fmt.Errorf("%w: orientation %d", ErrInvalidConfig, c.Orientation)
	}
	return nil
}

// Sanitize clamps out-of-range values to safe minimums and logs each one.
// It expects a config that passed Validate.
func (c Config) Sanitize(logger *slog.Logger) Config {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	warn := func(field string, from, to any) {
		logger.Warn("ring: config value clamped",
			slog.String("field", field), slog.Any("from", from), slog.Any("to", to))
	}

	if c.TotalItems < 1 {
		warn("totalItems", c.TotalItems, 1)
		c.TotalItems = 1
	}
	positive := func(field string, v *float64, floor float64) {
		if *v <= 0 {
			warn(field, *v, floor)
			*v = floor
		}
	}
	positive("itemWidth", &c.ItemWidth, 1)
	positive("itemHeight", &c.ItemHeight, 1)
	positive("velocityInfluence", &c.VelocityInfluence, def.VelocityInfluence)
	positive("springStiffness", &c.SpringStiffness, def.SpringStiffness)
	positive("minVelocity", &c.MinVelocity, def.MinVelocity)

	nonNeg := func(field string, v *float64) {
		if *v < 0 {
			warn(field, *v, 0)
			*v = 0
		}
	}
	nonNeg("baseRadius", &c.BaseRadius)
	nonNeg("minGap", &c.MinGap)
	nonNeg("elasticity", &c.Elasticity)
	nonNeg("springDamping", &c.SpringDamping)
	nonNeg("settleDuration", &c.SettleDuration)

	if c.Friction <= 0 || c.Friction >= 1 {
		warn("friction", c.Friction, def.Friction)
		c.Friction = def.Friction
	}
	if c.SoftSnap < 0 || c.SoftSnap > 1 {
		to := math.Max(0, math.Min(1, c.SoftSnap))
		warn("softSnap", c.SoftSnap, to)
		c.SoftSnap = to
	}
	return c
}
