package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/tangle/internal/engine"
	"github.com/olivier-w/tangle/internal/ring"
	"github.com/olivier-w/tangle/internal/util"
)

const (
	refFrame = 1.0 / 60.0
	maxDt    = 0.1

	// wheelRows is how far one wheel notch scrolls the page.
	wheelRows = 3.0
	// degPerCell converts drag distance into ring rotation.
	degPerCell = 3.0
	// A release this long after the last drag motion carries no velocity.
	flingWindow = 100 * time.Millisecond
)

// Options are the host settings that are not part of the engine config.
type Options struct {
	ReducedMotion bool
}

type dragState struct {
	active   bool
	x, y     int
	at       time.Time
	velocity float64 // degrees per 60 Hz frame
}

// Model is the Bubbletea host for the engine. It owns the virtual page,
// turns wheel and keys into scroll offsets and mouse drags into ring
// rotation, and only schedules frames while the engine is not settled.
type Model struct {
	engine  *engine.Engine
	page    page
	scroll  scroller
	reduced bool

	frame     engine.Frame
	ticking   bool
	lastFrame time.Time
	drag      dragState
	now       func() time.Time

	canvas   *canvas
	strip    *ringStrip
	knotBar  progress.Model
	ringBar  progress.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int
	quitting bool
}

// New creates the host model. The frame loop starts running and stops by
// itself once the engine settles.
func New(e *engine.Engine, opts Options) Model {
	m := Model{
		engine:  e,
		reduced: opts.ReducedMotion,
		ticking: true,
		now:     time.Now,
		canvas:  newCanvas(60, 8),
		strip:   &ringStrip{},
		knotBar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		ringBar: progress.New(progress.WithSolidFill("#00AEFF"), progress.WithoutPercentage()),
		help:    help.New(),
		keys:    defaultKeys(),
	}
	m.layout(80, 24)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(), tea.SetWindowTitle("tangle"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case frameMsg:
		return m.step(time.Time(msg))

	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, m.wake()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.engine.Destroy()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-m.page.viewport)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(m.page.viewport)
	case key.Matches(msg, m.keys.Top):
		m.scrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.scrollTo(m.page.maxOffset())
	case key.Matches(msg, m.keys.Reduce):
		m.reduced = !m.reduced
		if m.reduced {
			m.scroll.jump(m.scroll.target)
		}
	case key.Matches(msg, m.keys.Reseed):
		m.engine.Reseed()
	default:
		return m, nil
	}
	return m, m.wake()
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-wheelRows)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(wheelRows)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.drag = dragState{active: true, x: msg.X, y: msg.Y, at: m.now()}
		m.engine.BeginDrag()
	case msg.Action == tea.MouseActionMotion && m.drag.active:
		m.dragTo(msg.X, msg.Y)
	case msg.Action == tea.MouseActionRelease && m.drag.active:
		m.dragTo(msg.X, msg.Y)
		v := m.drag.velocity
		if m.now().Sub(m.drag.at) > flingWindow {
			v = 0
		}
		m.drag = dragState{}
		m.engine.EndDrag(v)
	default:
		return m, nil
	}
	return m, m.wake()
}

// dragTo rotates the ring by the pointer travel since the last event.
// Dragging right (or down) moves the cards with the pointer.
func (m *Model) dragTo(x, y int) {
	cells := x - m.drag.x
	if m.engine.Layout().Config().Orientation == ring.Vertical {
		cells = y - m.drag.y
	}
	now := m.now()
	if cells == 0 {
		return
	}
	delta := -float64(cells) * degPerCell
	frames := math.Max(1, now.Sub(m.drag.at).Seconds()/refFrame)
	m.drag.velocity = 0.8*(delta/frames) + 0.2*m.drag.velocity
	m.drag.x, m.drag.y, m.drag.at = x, y, now
	m.engine.Drag(delta, m.drag.velocity)
}

func (m *Model) scrollBy(rows float64) {
	m.scrollTo(m.scroll.target + rows)
}

func (m *Model) scrollTo(offset float64) {
	offset = m.page.clamp(offset)
	if m.reduced {
		m.scroll.jump(offset)
		return
	}
	m.scroll.set(offset)
}

// wake restarts the frame loop if it went idle.
func (m *Model) wake() tea.Cmd {
	if m.ticking || m.quitting {
		return nil
	}
	m.ticking = true
	m.lastFrame = time.Time{}
	return frameCmd()
}

func (m Model) step(t time.Time) (Model, tea.Cmd) {
	dt := refFrame
	if !m.lastFrame.IsZero() {
		dt = math.Min(t.Sub(m.lastFrame).Seconds(), maxDt)
	}
	m.lastFrame = t
	if dt > 0 {
		m.scroll.step(dt)
	}

	m.frame = m.engine.Frame(m.page.input(m.scroll.pos, m.reduced), dt)
	if m.frame.Settled && m.scroll.atRest() {
		m.ticking = false
		return m, nil
	}
	return m, frameCmd()
}

// layout sizes the canvas, bars and virtual page for a terminal of w x h
// cells and hands the new surface to the engine.
func (m *Model) layout(w, h int) {
	m.width, m.height = w, h
	cols := max(w-4, 10)
	rows := min(max(h-14, 4), 16)
	m.canvas.resize(cols, rows)
	dw, dh := m.canvas.dots()
	m.engine.Resize(float64(dw), float64(dh))

	barWidth := max(cols-12, 10)
	m.knotBar.Width = barWidth
	m.ringBar.Width = barWidth
	m.help.Width = cols

	offset := m.scroll.target
	if m.page.viewport > 0 {
		offset /= m.page.viewport
	}
	m.page = newPage(float64(h))
	m.scroll.jump(m.page.clamp(offset * m.page.viewport))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.frame

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render("tangle") + "  " +
		helpStyle.Render(fmt.Sprintf("pattern %d", f.Generation)) + "\n\n")

	m.canvas.plot(f.Path)
	tint := knotTint(m.canvas.cols, f.Generation, f.Motion.Latched)
	for _, line := range strings.Split(m.canvas.render(tint), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + labelStyle.Render("knot") + m.knotBar.ViewAs(f.Progress.Eased) +
		" " + statusStyle.Render(util.FormatPercent(f.Progress.Eased)) + "\n\n")

	layout := m.engine.Layout()
	for _, line := range strings.Split(m.strip.render(layout, f.Items, f.ActiveIndex, m.canvas.cols), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + labelStyle.Render("ring") + m.ringBar.ViewAs(f.RingProgress.Raw) +
		" " + statusStyle.Render(util.FormatPercent(f.RingProgress.Raw)) + "\n\n")

	b.WriteString("  " + m.statusLine() + "\n")
	if len(f.Items) > 0 && f.ActiveIndex < len(f.Items) {
		b.WriteString("  " + helpStyle.Render(layout.Transform(f.Items[f.ActiveIndex])) + "\n")
	}
	b.WriteString("\n  " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) statusLine() string {
	f := m.frame
	parts := []string{
		fmt.Sprintf("item %d/%d", f.ActiveIndex+1, m.engine.Layout().Config().TotalItems),
		util.FormatDegrees(f.Rotation.AngleDeg),
		"r " + util.FormatPixels(f.Radius.Current),
		f.Phase.String(),
	}
	if f.Pinned {
		parts = append(parts, "pinned")
	}
	if m.reduced {
		parts = append(parts, "reduced")
	}
	left := statusStyle.Render(strings.Join(parts, "  "))
	if f.Motion.IsMoving {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", movingStyle.Render("moving"))
	}
	return left
}
