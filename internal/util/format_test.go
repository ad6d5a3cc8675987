package util

import (
	"math"
	"testing"
)

func TestFormatDegrees(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0°"},
		{45, "45.0°"},
		{-45, "315.0°"},
		{405, "45.0°"},
		{359.97, "0.0°"},
		{math.NaN(), "--°"},
	}
	for _, tt := range tests {
		if got := FormatDegrees(tt.in); got != tt.want {
			t.Fatalf("FormatDegrees(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0%"},
		{0.426, "43%"},
		{1, "100%"},
		{1.7, "100%"},
		{-0.2, "0%"},
		{math.NaN(), "0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPixels(t *testing.T) {
	if got := FormatPixels(344.9); got != "345px" {
		t.Fatalf("expected 345px, got %q", got)
	}
	if got := FormatPixels(math.Inf(1)); got != "--px" {
		t.Fatalf("expected --px, got %q", got)
	}
}
