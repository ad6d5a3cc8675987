package ring

import (
	"math"
	"testing"
)

type recordingBridge struct {
	starts  int
	moves   int
	ends    []float64
	actives []int
}

func (b *recordingBridge) OnStart()                { b.starts++ }
func (b *recordingBridge) OnMove(float64, float64) { b.moves++ }
func (b *recordingBridge) OnEnd(v float64)         { b.ends = append(b.ends, v) }
func (b *recordingBridge) OnActiveChange(i int)    { b.actives = append(b.actives, i) }

func noSnap() Config {
	cfg := DefaultConfig()
	cfg.EnableSnap = false
	return cfg
}

func TestMomentumDecaysInBoundedFrames(t *testing.T) {
	run := func() (int, float64) {
		r := NewRotor(DefaultConfig(), nil)
		r.Scroll(10)
		r.BeginDrag()
		r.EndDrag(5)
		if r.Phase() != Momentum {
			t.Fatalf("expected momentum after release, got %v", r.Phase())
		}
		frames := 0
		for r.Phase() == Momentum {
			r.Step(refFrame)
			frames++
			if frames > 1000 {
				t.Fatal("momentum never decayed")
			}
		}
		return frames, r.Angle()
	}

	frames, angle := run()
	// 5 * 0.92^n < 0.05 first holds at n = 56.
	if frames != 56 {
		t.Fatalf("expected 56 frames of momentum, got %d", frames)
	}
	frames2, angle2 := run()
	if frames2 != frames || angle2 != angle {
		t.Fatal("expected deterministic momentum for fixed inputs")
	}
}

func TestSettleEndsOnSnapAngle(t *testing.T) {
	r := NewRotor(DefaultConfig(), nil)
	r.BeginDrag()
	r.Drag(30, 2)
	r.EndDrag(0)
	if r.Phase() != Settling {
		t.Fatalf("expected settling, got %v", r.Phase())
	}
	for range 120 {
		r.Step(refFrame)
	}
	if r.Phase() != Idle {
		t.Fatalf("expected idle after settle, got %v", r.Phase())
	}
	if got := r.Angle(); got != 45 {
		t.Fatalf("expected snap to 45, got %v", got)
	}
	if r.State().AngularVelocity != 0 {
		t.Fatal("expected velocity reset on snap completion")
	}
}

func TestSettleTweenEasesOut(t *testing.T) {
	r := NewRotor(DefaultConfig(), nil)
	r.BeginDrag()
	r.Drag(30, 0)
	r.EndDrag(0)
	r.Step(DefaultConfig().SettleDuration / 2)
	// Ease-out-cubic at t=0.5 covers 87.5% of the way from 30 to 45.
	if got := r.Angle(); math.Abs(got-43.125) > 1e-9 {
		t.Fatalf("expected 43.125 mid-tween, got %v", got)
	}
}

func TestSnapDisabledStopsWhereMomentumEnds(t *testing.T) {
	r := NewRotor(noSnap(), nil)
	r.BeginDrag()
	r.Drag(30, 0)
	r.EndDrag(0)
	if r.Phase() != Idle {
		t.Fatalf("expected idle without snapping, got %v", r.Phase())
	}
	if r.Angle() != 30 {
		t.Fatalf("expected angle 30, got %v", r.Angle())
	}
}

func TestScrollIgnoredWhileDragging(t *testing.T) {
	r := NewRotor(noSnap(), nil)
	r.Scroll(20)
	r.BeginDrag()
	r.Drag(5, 1)
	r.Scroll(200)
	if got := r.Angle(); got != 25 {
		t.Fatalf("expected drag to preempt scroll, got %v", got)
	}
	r.EndDrag(0)

	// Scrolling resumes from the last rotation without a jump.
	if got := r.Angle(); got != 25 {
		t.Fatalf("expected no jump on release, got %v", got)
	}
	r.Scroll(210)
	if got := r.Angle(); got != 35 {
		t.Fatalf("expected scroll delta applied to last rotation, got %v", got)
	}
}

func TestSoftSnapPullsScrollAngle(t *testing.T) {
	r := NewRotor(DefaultConfig(), nil)
	r.Scroll(40)
	want := 40 + (45-40)*DefaultConfig().SoftSnap
	if got := r.Angle(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected soft snapped %v, got %v", want, got)
	}
	r.BeginDrag()
	if got := r.Angle(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected drag to start from displayed angle %v, got %v", want, got)
	}
}

func TestBridgeEvents(t *testing.T) {
	b := &recordingBridge{}
	r := NewRotor(noSnap(), b)
	r.Drag(10, 1) // ignored before BeginDrag
	r.BeginDrag()
	r.Drag(50, 3)
	r.Drag(50, 3)
	r.EndDrag(0)

	if b.starts != 1 || b.moves != 2 {
		t.Fatalf("expected 1 start and 2 moves, got %d and %d", b.starts, b.moves)
	}
	if len(b.ends) != 1 || b.ends[0] != 0 {
		t.Fatalf("expected one end event, got %v", b.ends)
	}
	// 50 -> index 1, 100 -> index 2
	if len(b.actives) != 2 || b.actives[0] != 1 || b.actives[1] != 2 {
		t.Fatalf("expected active changes [1 2], got %v", b.actives)
	}
}

func TestDragIgnoresNonFinite(t *testing.T) {
	r := NewRotor(noSnap(), nil)
	r.BeginDrag()
	r.Drag(math.NaN(), 1)
	r.Drag(5, math.Inf(1))
	if r.Angle() != 5 || r.State().AngularVelocity != 0 {
		t.Fatalf("expected finite state, got %+v", r.State())
	}
	if !r.State().IsDragging {
		t.Fatal("expected dragging flag")
	}
}

func TestHeldDragVelocityDecays(t *testing.T) {
	cfg := DefaultConfig()
	r := NewRotor(cfg, nil)
	r.BeginDrag()
	r.Drag(20, 12)
	r.Step(refFrame)
	if v := r.State().AngularVelocity; v != 12 {
		t.Fatalf("expected the frame with a drag to keep velocity 12, got %v", v)
	}
	r.Step(refFrame)
	if v := r.State().AngularVelocity; v >= 12 || v <= 0 {
		t.Fatalf("expected velocity to start decaying once the pointer stops, got %v", v)
	}
	for range 180 {
		r.Step(refFrame)
	}
	st := r.State()
	if st.AngularVelocity != 0 {
		t.Fatalf("expected held drag to reach zero velocity, got %v", st.AngularVelocity)
	}
	if !st.IsDragging || st.AngleDeg != 20 {
		t.Fatalf("expected drag held at 20 degrees, got %+v", st)
	}
}

func TestMovingDragKeepsVelocity(t *testing.T) {
	r := NewRotor(DefaultConfig(), nil)
	r.BeginDrag()
	for range 30 {
		r.Drag(12, 12)
		r.Step(refFrame)
	}
	if v := r.State().AngularVelocity; v != 12 {
		t.Fatalf("expected live drag velocity 12, got %v", v)
	}
}

func TestDynamicRadiusSpringsTowardTarget(t *testing.T) {
	cfg := DefaultConfig()
	st := NewRadiusState(cfg)
	rest := st.Current

	spin := 2 * cfg.VelocityInfluence
	for range 240 {
		st = DynamicRadius(st, cfg, spin, refFrame, false)
	}
	want := rest * (1 + cfg.Elasticity)
	if math.Abs(st.Target-want) > 1e-9 {
		t.Fatalf("expected saturated target %v, got %v", want, st.Target)
	}
	if math.Abs(st.Current-want) > 0.5 {
		t.Fatalf("expected radius to settle near %v, got %v", want, st.Current)
	}

	for range 240 {
		st = DynamicRadius(st, cfg, 0, refFrame, false)
	}
	if !st.AtRest(0.01) || math.Abs(st.Current-rest) > 0.01 {
		t.Fatalf("expected radius back at rest %v, got %+v", rest, st)
	}
}

func TestDynamicRadiusReducedMotionIgnoresSpin(t *testing.T) {
	cfg := DefaultConfig()
	st := NewRadiusState(cfg)
	next := DynamicRadius(st, cfg, 100, refFrame, true)
	if next.Target != st.Current {
		t.Fatalf("expected target to stay at rest under reduced motion, got %v", next.Target)
	}
}

func TestDynamicRadiusNeverNegative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpringDamping = 0
	st := RadiusState{Current: 0, Velocity: -5000}
	for range 60 {
		st = DynamicRadius(st, cfg, 0, refFrame, false)
		if st.Current < 0 {
			t.Fatalf("expected non-negative radius, got %v", st.Current)
		}
	}
}

func TestDynamicRadiusZeroDtKeepsState(t *testing.T) {
	cfg := DefaultConfig()
	st := RadiusState{Current: 100, Velocity: 3}
	next := DynamicRadius(st, cfg, 0, 0, false)
	if next.Current != 100 || next.Velocity != 3 {
		t.Fatalf("expected state unchanged for dt=0, got %+v", next)
	}
}
