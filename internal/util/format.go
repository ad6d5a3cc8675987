package util

import (
	"fmt"
	"math"
)

// FormatDegrees formats an angle with one decimal, normalized to
// [0, 360) so a spinning ring reads like a dial.
func FormatDegrees(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return "--°"
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 359.95 {
		deg = 0
	}
	return fmt.Sprintf("%.1f°", deg)
}

// FormatPercent formats a [0,1] ratio as a whole percentage.
func FormatPercent(p float64) string {
	if !(p > 0) {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return fmt.Sprintf("%d%%", int(math.Round(p*100)))
}

// FormatPixels formats a length with no decimals.
func FormatPixels(px float64) string {
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return "--px"
	}
	return fmt.Sprintf("%.0fpx", px)
}
