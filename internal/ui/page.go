package ui

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/tangle/internal/engine"
	"github.com/olivier-w/tangle/internal/progress"
)

// page is the virtual document the terminal scrolls through. All lengths
// are in terminal rows and scale with the viewport height:
//
//	[intro 1vh][knot 1vh][gap .5vh][ring 2vh][outro 1vh]
type page struct {
	viewport   float64
	knotTop    float64
	knotHeight float64
	ringTop    float64
	ringHeight float64
	height     float64
}

func newPage(viewport float64) page {
	if viewport < 1 {
		viewport = 1
	}
	p := page{viewport: viewport}
	p.knotTop = viewport
	p.knotHeight = viewport
	p.ringTop = p.knotTop + p.knotHeight + viewport/2
	p.ringHeight = viewport * 2
	p.height = p.ringTop + p.ringHeight + viewport
	return p
}

// maxOffset is the largest scroll offset that keeps the viewport filled.
func (p page) maxOffset() float64 {
	return math.Max(0, p.height-p.viewport)
}

func (p page) clamp(offset float64) float64 {
	return math.Min(math.Max(offset, 0), p.maxOffset())
}

// knotCentered is the offset at which the knot section sits in the middle
// of the viewport.
func (p page) knotCentered() float64 {
	return p.knotTop + p.knotHeight/2 - p.viewport/2
}

func (p page) input(offset float64, reduced bool) engine.Input {
	return engine.Input{
		Knot: progress.Sample{
			Offset:         offset,
			ViewportHeight: p.viewport,
			Rect:           progress.Rect{Top: p.knotTop, Height: p.knotHeight},
		},
		Ring: progress.Sample{
			Offset:         offset,
			ViewportHeight: p.viewport,
			Rect:           progress.Rect{Top: p.ringTop, Height: p.ringHeight},
		},
		ReducedMotion: reduced,
	}
}

// scroller eases the displayed scroll offset toward the requested one, the
// way a browser smooth-scrolls a wheel notch.
type scroller struct {
	pos, vel, target float64
}

const (
	scrollFrequency = 9.0
	scrollDamping   = 1.0
	scrollEps       = 0.01
)

func (s *scroller) set(target float64) { s.target = target }

// jump moves to target without easing, for reduced motion.
func (s *scroller) jump(target float64) {
	s.pos, s.vel, s.target = target, 0, target
}

func (s *scroller) step(dt float64) {
	if s.atRest() {
		s.pos, s.vel = s.target, 0
		return
	}
	spring := harmonica.NewSpring(dt, scrollFrequency, scrollDamping)
	s.pos, s.vel = spring.Update(s.pos, s.vel, s.target)
}

func (s *scroller) atRest() bool {
	return math.Abs(s.pos-s.target) < scrollEps && math.Abs(s.vel) < scrollEps
}
