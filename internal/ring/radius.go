package ring

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// RadiusState is the spring-damped ring radius carried across frames.
type RadiusState struct {
	Current  float64
	Target   float64
	Velocity float64
}

// RestRadius is the radius the ring settles to with no spin.
func RestRadius(cfg Config) float64 {
	return EffectiveRadius(cfg.BaseRadius, SpacingRadius(cfg.ItemWidth, cfg.MinGap, cfg.TotalItems))
}

// NewRadiusState starts the spring at rest on the effective radius.
func NewRadiusState(cfg Config) RadiusState {
	r := RestRadius(cfg)
	return RadiusState{Current: r, Target: r}
}

// TargetRadius stretches the rest radius with spin speed. angularVelocity
// is in degrees per 60 Hz frame.
func TargetRadius(cfg Config, angularVelocity float64, reducedMotion bool) float64 {
	eff := RestRadius(cfg)
	elasticity := cfg.Elasticity
	if reducedMotion {
		elasticity = 0
	}
	var influence float64
	if cfg.VelocityInfluence > 0 && !math.IsNaN(angularVelocity) {
		influence = math.Min(1, math.Abs(angularVelocity)/cfg.VelocityInfluence)
	}
	return eff + influence*eff*elasticity
}

// DynamicRadius advances the radius spring by dt seconds toward the
// spin-dependent target. The spring is a unit mass with stiffness k and
// damping c, so harmonica gets ω = √k and ζ = c / (2√k).
func DynamicRadius(state RadiusState, cfg Config, angularVelocity, dt float64, reducedMotion bool) RadiusState {
	state.Target = TargetRadius(cfg, angularVelocity, reducedMotion)
	if !(dt > 0) || math.IsInf(dt, 0) || cfg.SpringStiffness <= 0 {
		return state
	}

	omega := math.Sqrt(cfg.SpringStiffness)
	zeta := cfg.SpringDamping / (2 * omega)
	spring := harmonica.NewSpring(dt, omega, zeta)
	state.Current, state.Velocity = spring.Update(state.Current, state.Velocity, state.Target)

	if state.Current < 0 || math.IsNaN(state.Current) {
		state.Current = 0
		state.Velocity = 0
	}
	return state
}

// AtRest reports whether the spring has settled within eps of its target.
func (s RadiusState) AtRest(eps float64) bool {
	return math.Abs(s.Current-s.Target) < eps && math.Abs(s.Velocity) < eps
}
