package renderer

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestDensityColor(t *testing.T) {
	tests := []struct {
		name    string
		density float32
		want    rl.Color
	}{
		{"zero", 0, rl.Color{R: 0, G: 127, B: 255, A: 255}},
		{"negative clamps", -50, rl.Color{R: 0, G: 127, B: 255, A: 255}},
		{"saturated", 1500, rl.Color{R: 255, G: 255, B: 255, A: 255}},
		{"above scale", 9000, rl.Color{R: 255, G: 255, B: 255, A: 255}},
		{"NaN", float32(math.NaN()), nonFiniteColor},
		{"Inf", float32(math.Inf(1)), nonFiniteColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DensityColor(tt.density); got != tt.want {
				t.Errorf("DensityColor(%v) = %+v, want %+v", tt.density, got, tt.want)
			}
		})
	}
}

func TestDensityColorMonotonic(t *testing.T) {
	prev := DensityColor(0)
	for d := float32(100); d <= 1500; d += 100 {
		c := DensityColor(d)
		if c.R < prev.R || c.G < prev.G {
			t.Fatalf("color not monotonic at density %v: %+v after %+v", d, c, prev)
		}
		prev = c
	}
}
