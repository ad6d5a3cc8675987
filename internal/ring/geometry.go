package ring

import "math"

// StepDeg is the angular distance between adjacent slots. A non-positive
// total is treated as a single item.
func StepDeg(total int) float64 {
	if total <= 0 {
		total = 1
	}
	return 360 / float64(total)
}

// AngleFor is the resting angle of slot index.
func AngleFor(index, total int) float64 {
	return float64(index) * StepDeg(total)
}

// SpacingRadius is the smallest radius at which adjacent items of width
// itemWidth keep at least minGap between them (chord length). It is 0 for
// a single item.
func SpacingRadius(itemWidth, minGap float64, total int) float64 {
	if total <= 1 {
		return 0
	}
	return (itemWidth + minGap) / (2 * math.Sin(math.Pi/float64(total)))
}

// EffectiveRadius never lets the configured radius pack items tighter
// than spacing allows.
func EffectiveRadius(base, spacing float64) float64 {
	return math.Max(base, spacing)
}

// NearestSnapAngle rounds current to the closest slot angle.
func NearestSnapAngle(current float64, total int) float64 {
	step := StepDeg(total)
	return math.Round(current/step) * step
}

// ActiveIndex is the slot nearest to rotation, in [0,total).
func ActiveIndex(rotation float64, total int) int {
	if total <= 0 {
		total = 1
	}
	i := int(math.Round(rotation/StepDeg(total))) % total
	if i < 0 {
		i += total
	}
	return i
}

// NormalizeAngle maps deg into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
