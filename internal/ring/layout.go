package ring

import (
	"fmt"
	"log/slog"
	"math"
)

// Item is one ring slot as placed for the current frame.
type Item struct {
	Index    int
	AngleDeg float64 // relative to the viewer, in (-180, 180]
	Radius   float64
}

// Depth is 1 for the item facing the viewer and -1 for the one behind.
func (it Item) Depth() float64 {
	return math.Cos(it.AngleDeg * math.Pi / 180)
}

// Layout places ring items from a validated, immutable config.
type Layout struct {
	cfg     Config
	spacing float64
	rest    float64
	items   []Item
}

// NewLayout validates cfg, clamps recoverable values with a warning, and
// returns the layout. Only non-finite values are rejected.
func NewLayout(cfg Config, logger *slog.Logger) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Sanitize(logger)
	return &Layout{
		cfg:     cfg,
		spacing: SpacingRadius(cfg.ItemWidth, cfg.MinGap, cfg.TotalItems),
		rest:    RestRadius(cfg),
		items:   make([]Item, cfg.TotalItems),
	}, nil
}

func (l *Layout) Config() Config { return l.cfg }

// SpacingRadius is the minimum non-overlapping radius for this layout.
func (l *Layout) SpacingRadius() float64 { return l.spacing }

// RestRadius is the effective radius with no spin.
func (l *Layout) RestRadius() float64 { return l.rest }

// Items places every slot for rotation and radius. The returned slice is
// reused by the next call.
func (l *Layout) Items(rotation, radius float64) []Item {
	if l.items == nil {
		l.items = make([]Item, l.cfg.TotalItems)
	}
	for i := range l.items {
		l.items[i] = Item{
			Index:    i,
			AngleDeg: NormalizeAngle(AngleFor(i, l.cfg.TotalItems) - rotation),
			Radius:   radius,
		}
	}
	return l.items
}

// Release drops the item buffer.
func (l *Layout) Release() { l.items = nil }

// Transform renders it as a CSS-style transform string for the layout's
// orientation.
func (l *Layout) Transform(it Item) string {
	axis := "Y"
	if l.cfg.Orientation == Vertical {
		axis = "X"
	}
	return fmt.Sprintf("rotate%s(%.2fdeg) translateZ(%.2fpx)", axis, it.AngleDeg, it.Radius)
}

// Project maps it onto the screen plane: offset along the ring's axis and
// a depth-based scale in (0,1].
func (l *Layout) Project(it Item) (offset, scale float64) {
	rad := it.AngleDeg * math.Pi / 180
	offset = it.Radius * math.Sin(rad)
	scale = 0.55 + 0.45*(math.Cos(rad)+1)/2
	return offset, scale
}
