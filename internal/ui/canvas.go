package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/tangle/internal/knot"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// canvas plots a knot path on a braille grid. Each cell is a 2x4 dot
// grid, so the path surface is cols*2 by rows*4 dots.
type canvas struct {
	cols, rows int
	cells      []uint8
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{}
	c.resize(cols, rows)
	return c
}

func (c *canvas) resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols, c.rows = cols, rows
	c.cells = make([]uint8, cols*rows)
}

// dots is the surface size handed to the knot generator.
func (c *canvas) dots() (w, h int) { return c.cols * 2, c.rows * 4 }

func (c *canvas) clear() { clear(c.cells) }

func (c *canvas) set(x, y int) {
	w, h := c.dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	c.cells[(y/4)*c.cols+x/2] |= 1 << brailleBits[x%2][y%4]
}

// line walks from a to b one dot at a time.
func (c *canvas) line(a, b knot.Point) {
	n := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if n < 1 {
		c.set(int(a.X), int(a.Y))
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.set(int(a.X+(b.X-a.X)*t), int(a.Y+(b.Y-a.Y)*t))
	}
}

func (c *canvas) plot(path []knot.Point) {
	c.clear()
	for i := 1; i < len(path); i++ {
		c.line(path[i-1], path[i])
	}
	if len(path) == 1 {
		c.set(int(path[0].X), int(path[0].Y))
	}
}

// render draws the grid. Each row is split into runs of equal tint so
// lipgloss can downsample the colors to whatever the terminal supports.
func (c *canvas) render(tint func(col int) colorRGB) string {
	var sb strings.Builder
	run := make([]rune, 0, c.cols)
	for row := range c.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		var cur colorRGB
		flush := func() {
			if len(run) == 0 {
				return
			}
			if tint == nil {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(cur.color()).Render(string(run)))
			}
			run = run[:0]
		}
		for col := range c.cols {
			var tc colorRGB
			if tint != nil {
				tc = tint(col)
			}
			if tc != cur {
				flush()
				cur = tc
			}
			run = append(run, rune(0x2800+int(c.cells[row*c.cols+col])))
		}
		flush()
	}
	return sb.String()
}

type colorRGB struct {
	R, G, B uint8
}

func (c colorRGB) color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

func lerpColor(a, b colorRGB, t float64) colorRGB {
	t = math.Min(math.Max(t, 0), 1)
	return colorRGB{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

func rgbFromHSV(h, s, v float64) colorRGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return colorRGB{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255)}
}

// tintSteps quantizes the gradient so neighbouring cells share a style.
const tintSteps = 12

// knotTint shades the path along its length. The hue rotates with the
// knot generation and the color brightens while the page is moving.
func knotTint(cols, generation int, motion float64) func(col int) colorRGB {
	base := math.Mod(float64(generation)*0.137, 1)
	calm := colorRGB{R: 110, G: 110, B: 130}
	return func(col int) colorRGB {
		t := 0.0
		if cols > 1 {
			t = math.Floor(float64(col)/float64(cols-1)*tintSteps) / tintSteps
		}
		hot := rgbFromHSV(base+t*0.25, 0.65, 0.95)
		return lerpColor(calm, hot, motion)
	}
}
