// Kernel preview tool - plots the smoothing kernels against distance with
// an adjustable smoothing radius.
//
// Usage: go run ./cmd/kernelpreview
package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/sph/fluid"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	plotSize     = 560
	panelWidth   = windowWidth - plotSize - 40
	samples      = 200
	defaultH     = 0.1
)

// curve is one kernel sampled over [0, h].
type curve struct {
	name   string
	color  rl.Color
	eval   func(r mgl32.Vec2, h float32) float32
	values []float32
}

func newCurves() []*curve {
	return []*curve{
		{name: "poly6 W", color: rl.SkyBlue, eval: fluid.Poly6W},
		{name: "spiky W", color: rl.Orange, eval: fluid.SpikyW},
		{name: "|spiky grad|", color: rl.Red, eval: func(r mgl32.Vec2, h float32) float32 {
			return fluid.SpikyGradient(r, h).Len()
		}},
		{name: "viscosity W", color: rl.Lime, eval: fluid.ViscosityW},
		{name: "viscosity lap", color: rl.Purple, eval: fluid.ViscosityLaplacian},
	}
}

// sample evaluates c at evenly spaced distances along x and returns the
// largest absolute value.
func (c *curve) sample(h float32) float32 {
	if c.values == nil {
		c.values = make([]float32, samples)
	}
	var peak float32
	for i := range c.values {
		r := h * float32(i) / float32(samples-1)
		v := c.eval(mgl32.Vec2{r, 0}, h)
		c.values[i] = v
		if a := mgl32.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Kernel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	curves := newCurves()
	visible := make([]bool, len(curves))
	for i := range visible {
		visible[i] = true
	}
	peaks := make([]float32, len(curves))

	h := float32(defaultH)
	normalize := true
	needsResample := true

	for !rl.WindowShouldClose() {
		if needsResample {
			for i, c := range curves {
				peaks[i] = c.sample(h)
			}
			needsResample = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawPlot(curves, visible, peaks, normalize)

		// Control panel
		panelX := float32(plotSize + 30)
		panelY := float32(10)

		rl.DrawText("Smoothing Kernels", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Smoothing radius h", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newH := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.01", "1.0",
			h, 0.01, 1.0,
		)
		rl.DrawText(fmt.Sprintf("%.3f", h), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newH != h {
			h = newH
			needsResample = true
		}
		panelY += 40

		normalize = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 20, Height: 20}, "Normalize to peak", normalize)
		panelY += 35

		for i, c := range curves {
			visible[i] = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 20, Height: 20}, c.name, visible[i])
			rl.DrawRectangle(int32(panelX+float32(panelWidth-70)), int32(panelY+6), 30, 8, c.color)
			panelY += 28
		}
		panelY += 10

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		rl.DrawText("Values at r = 0", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for i, c := range curves {
			rl.DrawText(fmt.Sprintf("%-14s %12.4g  peak %10.4g", c.name, c.values[0], peaks[i]), int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
		}
		panelY += 20

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset") {
			h = defaultH
			needsResample = true
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(fmt.Sprintf("fluid:\n  smoothing_radius: %.3f", h))
		}

		rl.EndDrawing()
	}
}

// drawPlot draws every visible curve. Normalized curves share a [-1, 1]
// axis; otherwise the largest visible peak sets the scale.
func drawPlot(curves []*curve, visible []bool, peaks []float32, normalize bool) {
	const x0, y0 = 10, 10
	rl.DrawRectangleLines(x0, y0, plotSize, plotSize, rl.DarkGray)
	midY := float32(y0 + plotSize/2)
	rl.DrawLine(x0, int32(midY), x0+plotSize, int32(midY), rl.LightGray)
	rl.DrawText("0", x0+4, y0+plotSize-18, 14, rl.Gray)
	rl.DrawText("h", x0+plotSize-14, y0+plotSize-18, 14, rl.Gray)

	var scale float32
	for i := range curves {
		if visible[i] && peaks[i] > scale {
			scale = peaks[i]
		}
	}

	for i, c := range curves {
		if !visible[i] {
			continue
		}
		s := scale
		if normalize {
			s = peaks[i]
		}
		if s == 0 {
			continue
		}
		var prev rl.Vector2
		for j, v := range c.values {
			p := rl.Vector2{
				X: x0 + float32(j)/float32(samples-1)*plotSize,
				Y: midY - v/s*(plotSize/2-10),
			}
			if j > 0 {
				rl.DrawLineEx(prev, p, 2, c.color)
			}
			prev = p
		}
	}
}
