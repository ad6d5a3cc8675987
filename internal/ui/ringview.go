package ui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/olivier-w/tangle/internal/ring"
)

type cardLayer uint8

const (
	layerNone cardLayer = iota
	layerBack
	layerFront
	layerActive
)

// Widest card in cells, drawn for the item facing the viewer.
const cardCells = 10

type cell struct {
	r     rune
	layer cardLayer
}

// ringStrip projects the ring onto a grid of cells. Horizontal rings are
// laid out left to right as three-row cards, vertical rings top to bottom
// as one-row cards. Items are painted back to front so nearer cards
// cover farther ones.
type ringStrip struct {
	width, height int
	grid          []cell
	order         []ring.Item
}

func (s *ringStrip) render(l *ring.Layout, items []ring.Item, active int, width int) string {
	if width < cardCells+2 {
		width = cardCells + 2
	}
	cfg := l.Config()
	height := 3
	if cfg.Orientation == ring.Vertical {
		height = 9
	}
	s.reset(width, height)

	span := float64(width-cardCells) / 2
	if cfg.Orientation == ring.Vertical {
		span = float64(height-1) / 2
	}
	// The widest the ring gets is its rest radius stretched by elasticity.
	reach := l.RestRadius() * (1 + cfg.Elasticity)
	scale := 0.0
	if reach > 0 {
		scale = span / reach
	}

	s.order = append(s.order[:0], items...)
	slices.SortStableFunc(s.order, func(a, b ring.Item) int {
		switch da, db := a.Depth(), b.Depth(); {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	for _, it := range s.order {
		offset, size := l.Project(it)
		layer := layerFront
		switch {
		case it.Index == active:
			layer = layerActive
		case it.Depth() < 0:
			layer = layerBack
		}
		w := max(4, int(math.Round(size*cardCells)))
		if cfg.Orientation == ring.Vertical {
			y := int(math.Round(float64(height-1)/2 + offset*scale))
			s.card(width/2-w/2, y, w, 1, it.Index, layer)
		} else {
			x := int(math.Round(float64(width)/2+offset*scale)) - w/2
			s.card(x, 0, w, 3, it.Index, layer)
		}
	}
	return s.String()
}

func (s *ringStrip) reset(width, height int) {
	s.width, s.height = width, height
	if cap(s.grid) < width*height {
		s.grid = make([]cell, width*height)
	}
	s.grid = s.grid[:width*height]
	for i := range s.grid {
		s.grid[i] = cell{r: ' '}
	}
}

func (s *ringStrip) put(x, y int, r rune, layer cardLayer) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.grid[y*s.width+x] = cell{r: r, layer: layer}
}

// card draws an item box of w cells. Three-row cards get a border; single
// rows are bracketed.
func (s *ringStrip) card(x, y, w, h, index int, layer cardLayer) {
	label := []rune(fmt.Sprintf("%02d", index+1))
	if h == 1 {
		for i := range w {
			r := '─'
			switch i {
			case 0:
				r = '['
			case w - 1:
				r = ']'
			}
			s.put(x+i, y, r, layer)
		}
		s.text(x+w/2-len(label)/2, y, label, layer)
		return
	}
	for i := range w {
		top, mid, bot := '─', ' ', '─'
		switch i {
		case 0:
			top, mid, bot = '╭', '│', '╰'
		case w - 1:
			top, mid, bot = '╮', '│', '╯'
		}
		s.put(x+i, y, top, layer)
		s.put(x+i, y+1, mid, layer)
		s.put(x+i, y+2, bot, layer)
	}
	s.text(x+w/2-len(label)/2, y+1, label, layer)
}

func (s *ringStrip) text(x, y int, label []rune, layer cardLayer) {
	for i, r := range label {
		s.put(x+i, y, r, layer)
	}
}

// String renders the grid, styling runs of cells that share a layer.
func (s *ringStrip) String() string {
	var sb strings.Builder
	run := make([]rune, 0, s.width)
	for y := range s.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		cur := layerNone
		for x := range s.width {
			c := s.grid[y*s.width+x]
			if c.layer != cur && len(run) > 0 {
				sb.WriteString(cardStyles[cur].Render(string(run)))
				run = run[:0]
			}
			cur = c.layer
			run = append(run, c.r)
		}
		if len(run) > 0 {
			sb.WriteString(cardStyles[cur].Render(string(run)))
			run = run[:0]
		}
	}
	return sb.String()
}
