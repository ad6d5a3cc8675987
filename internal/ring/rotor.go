package ring

import (
	"math"

	"github.com/olivier-w/tangle/internal/progress"
)

const refFrame = 1.0 / 60.0

// DragBridge receives drag lifecycle events from a Rotor. Hosts use it to
// drive feedback such as clicks and accessibility labels.
type DragBridge interface {
	OnStart()
	OnMove(angle, velocity float64)
	OnEnd(velocity float64)
	OnActiveChange(index int)
}

// NopBridge ignores every event.
type NopBridge struct{}

func (NopBridge) OnStart()                {}
func (NopBridge) OnMove(float64, float64) {}
func (NopBridge) OnEnd(float64)           {}
func (NopBridge) OnActiveChange(int)      {}

// Phase is the rotor's drag state.
type Phase uint8

const (
	Idle Phase = iota
	Dragging
	Momentum
	Settling
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Momentum:
		return "momentum"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// RotationState is the ring rotation exposed to the presentation layer.
type RotationState struct {
	AngleDeg        float64
	AngularVelocity float64 // deg per 60 Hz frame
	IsDragging      bool
}

// Rotor tracks ring rotation from scroll and drag input.
//
// Scroll sets a base angle; drag accumulates into a separate offset. While
// a drag, its momentum, or the settle tween is running, scroll input is
// recorded but not applied. On returning to idle the offset is rebased so
// scrolling continues from the last rotation without a jump.
type Rotor struct {
	cfg    Config
	bridge DragBridge

	phase       Phase
	scrollAngle float64
	scrollInput float64
	dragOffset  float64
	velocity    float64
	dragMoved   bool // a Drag arrived since the last Step

	settleFrom    float64
	settleTo      float64
	settleElapsed float64

	active int
}

// NewRotor creates an idle rotor at angle 0. A nil bridge is replaced
// with NopBridge.
func NewRotor(cfg Config, bridge DragBridge) *Rotor {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &Rotor{cfg: cfg, bridge: bridge}
}

// SetBridge swaps the event receiver.
func (r *Rotor) SetBridge(b DragBridge) {
	if b == nil {
		b = NopBridge{}
	}
	r.bridge = b
}

func (r *Rotor) Phase() Phase { return r.phase }

// Angle is the current rotation in degrees. While idle with snapping
// enabled, it is pulled part way toward the nearest slot.
func (r *Rotor) Angle() float64 {
	a := r.scrollAngle + r.dragOffset
	if r.phase == Idle && r.cfg.EnableSnap && r.cfg.SoftSnap > 0 {
		a += (NearestSnapAngle(a, r.cfg.TotalItems) - a) * r.cfg.SoftSnap
	}
	return a
}

func (r *Rotor) State() RotationState {
	return RotationState{
		AngleDeg:        r.Angle(),
		AngularVelocity: r.velocity,
		IsDragging:      r.phase == Dragging,
	}
}

// ActiveIndex is the slot currently facing the viewer.
func (r *Rotor) ActiveIndex() int { return r.active }

// Scroll records a scroll-driven angle. It applies only while idle.
func (r *Rotor) Scroll(angle float64) {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return
	}
	r.scrollInput = angle
	if r.phase != Idle {
		return
	}
	r.scrollAngle = angle
	r.updateActive()
}

// BeginDrag stops any momentum or settle and starts following the pointer.
func (r *Rotor) BeginDrag() {
	// Keep the soft-snapped angle the user was looking at.
	r.setAngle(r.Angle())
	r.phase = Dragging
	r.velocity = 0
	r.dragMoved = false
	r.bridge.OnStart()
}

// Drag rotates by deltaDeg. velocity is the pointer's angular speed in deg
// per frame. Calls outside a drag are ignored.
func (r *Rotor) Drag(deltaDeg, velocity float64) {
	if r.phase != Dragging || math.IsNaN(deltaDeg) || math.IsInf(deltaDeg, 0) {
		return
	}
	if math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		velocity = 0
	}
	r.dragOffset += deltaDeg
	r.velocity = velocity
	r.dragMoved = true
	r.bridge.OnMove(r.Angle(), velocity)
	r.updateActive()
}

// EndDrag releases the pointer with the given velocity, entering momentum
// or settling.
func (r *Rotor) EndDrag(velocity float64) {
	if r.phase != Dragging {
		return
	}
	if math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		velocity = 0
	}
	r.velocity = velocity
	r.bridge.OnEnd(velocity)
	if math.Abs(velocity) >= r.cfg.MinVelocity {
		r.phase = Momentum
		return
	}
	r.velocity = 0
	r.startSettle()
}

// Step advances momentum or the settle tween by dt seconds. While
// dragging it decays the reported velocity if the pointer has not moved.
func (r *Rotor) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	frames := dt / refFrame

	switch r.phase {
	case Dragging:
		// A held pointer sends no events; let its last speed die out.
		if !r.dragMoved {
			r.velocity *= math.Pow(r.cfg.Friction, frames)
			if math.Abs(r.velocity) < r.cfg.MinVelocity {
				r.velocity = 0
			}
		}
		r.dragMoved = false

	case Momentum:
		r.dragOffset += r.velocity * frames
		r.velocity *= math.Pow(r.cfg.Friction, frames)
		if math.Abs(r.velocity) < r.cfg.MinVelocity {
			r.velocity = 0
			r.startSettle()
		}
		r.updateActive()

	case Settling:
		r.settleElapsed += dt
		t := r.settleElapsed / r.cfg.SettleDuration
		if t >= 1 {
			r.setAngle(r.settleTo)
			r.toIdle()
		} else {
			r.setAngle(r.settleFrom + (r.settleTo-r.settleFrom)*progress.EaseOutCubic(t))
		}
		r.updateActive()
	}
}

func (r *Rotor) startSettle() {
	from := r.scrollAngle + r.dragOffset
	if !r.cfg.EnableSnap {
		r.toIdle()
		return
	}
	to := NearestSnapAngle(from, r.cfg.TotalItems)
	if r.cfg.SettleDuration <= 0 || to == from {
		r.setAngle(to)
		r.toIdle()
		return
	}
	r.settleFrom, r.settleTo, r.settleElapsed = from, to, 0
	r.phase = Settling
}

func (r *Rotor) setAngle(a float64) {
	r.dragOffset = a - r.scrollAngle
}

// toIdle rebases the drag offset onto the latest scroll input.
func (r *Rotor) toIdle() {
	a := r.scrollAngle + r.dragOffset
	r.scrollAngle = r.scrollInput
	r.dragOffset = a - r.scrollInput
	r.velocity = 0
	r.phase = Idle
}

func (r *Rotor) updateActive() {
	i := ActiveIndex(r.Angle(), r.cfg.TotalItems)
	if i == r.active {
		return
	}
	r.active = i
	r.bridge.OnActiveChange(i)
}
