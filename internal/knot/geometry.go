package knot

import "math"

// LCG is a 32-bit linear congruential generator (Numerical Recipes
// constants). The same seed always yields the same stream.
type LCG struct {
	state uint32
}

// NewLCG seeds a generator.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Uint32 advances the generator and returns the new state.
func (r *LCG) Uint32() uint32 {
	r.state = r.state*1664525 + 1013904223
	return r.state
}

// Float64 returns a value in [0,1).
func (r *LCG) Float64() float64 {
	return float64(r.Uint32()) / 4294967296.0
}

// Loop is one knotted excursion along the curve's parametric domain.
type Loop struct {
	Position  float64 // window center in [0,1]
	HalfWidth float64 // window half-width in parametric units
	Radius    float64 // fraction of container height
	DirX      float64
	DirY      float64
	Twist     float64 // full turns inside the window
}

// Geometry is the seed-derived primitive set behind one tangle pattern.
type Geometry struct {
	Seed      uint32
	Loops     []Loop
	Amplitude float64
	Harmonics int
	Phases    []float64
}

// Generate derives the loop clusters and harmonic table from rng.
func Generate(seed uint32, rng *LCG, cfg Config) Geometry {
	geo := Geometry{
		Seed:      seed,
		Loops:     make([]Loop, cfg.Loops),
		Harmonics: cfg.Harmonics,
		Phases:    make([]float64, cfg.Harmonics),
	}

	clusters := max(1, cfg.Clusters)
	centers := make([]float64, clusters)
	band := 1.0 / float64(clusters)
	for c := range centers {
		centers[c] = (float64(c)+0.5)*band + (rng.Float64()-0.5)*band*0.5
	}

	for i := range geo.Loops {
		center := centers[i%clusters]
		pos := center + (rng.Float64()-0.5)*band*0.6
		angle := rng.Float64() * 2 * math.Pi
		geo.Loops[i] = Loop{
			Position:  math.Max(0.05, math.Min(0.95, pos)),
			HalfWidth: 0.04 + rng.Float64()*0.06,
			Radius:    cfg.LoopRadius * (0.5 + 0.5*rng.Float64()),
			DirX:      math.Cos(angle),
			DirY:      math.Sin(angle),
			Twist:     float64(1 + int(rng.Float64()*3)),
		}
	}

	geo.Amplitude = cfg.WaveAmplitude * (0.75 + 0.5*rng.Float64())
	for k := range geo.Phases {
		geo.Phases[k] = rng.Float64() * 2 * math.Pi
	}
	return geo
}

// offset returns the displacement of l at parameter t, in units of
// container height, or false when t is outside the loop's window.
func (l Loop) offset(t float64) (dx, dy float64, ok bool) {
	lo := l.Position - l.HalfWidth
	if l.HalfWidth <= 0 || t < lo || t > l.Position+l.HalfWidth {
		return 0, 0, false
	}
	u := (t - lo) / (2 * l.HalfWidth)
	env := math.Sin(math.Pi * u)
	a := 2 * math.Pi * l.Twist * u
	sx := math.Sin(a)
	sy := 1 - math.Cos(a)
	r := l.Radius * env
	return r * (sx*l.DirX - sy*l.DirY), r * (sx*l.DirY + sy*l.DirX), true
}

// wave is the harmonic sum at t, pinned to zero at both ends.
func (g Geometry) wave(t float64) float64 {
	var sum float64
	for k, ph := range g.Phases {
		n := float64(k + 1)
		sum += g.Amplitude / n * math.Sin(2*math.Pi*n*t+ph)
	}
	return sum * math.Sin(math.Pi*t)
}
