package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ParamsChange reports which kinds of settings a panel interaction changed.
type ParamsChange struct {
	Params bool
	Count  bool
	Step   bool
	Reset  bool
}

// Any reports whether anything changed.
func (c ParamsChange) Any() bool {
	return c.Params || c.Count || c.Step || c.Reset
}

func (c *ParamsChange) merge(o ParamsChange) {
	c.Params = c.Params || o.Params
	c.Count = c.Count || o.Count
	c.Step = c.Step || o.Step
	c.Reset = c.Reset || o.Reset
}

// DefaultSliders returns the parameter sliders in display order. Particle
// count and time step ranges come from configuration.
func DefaultSliders(count, dt FieldRange) []SliderDescriptor {
	return []SliderDescriptor{
		{
			ID: "count", Label: "Particle Count", Format: "%.0f", Range: count, Kind: SliderCount,
			Get: func(s *Settings) float32 { return float32(s.ParticleCount) },
			Set: func(s *Settings, v float32) { s.ParticleCount = int(math.Round(float64(v))) },
		},
		{
			ID: "dt", Label: "Time Step", Format: "%.3f", Range: dt, Kind: SliderStep,
			Get: func(s *Settings) float32 { return s.DT },
			Set: func(s *Settings, v float32) { s.DT = v },
		},
		{
			ID: "gravity_x", Label: "Gravity X", Format: "%.2f", Range: FieldRange{-20, 20},
			Get: func(s *Settings) float32 { return s.Params.Gravity[0] },
			Set: func(s *Settings, v float32) { s.Params.Gravity[0] = v },
		},
		{
			ID: "gravity_y", Label: "Gravity Y", Format: "%.2f", Range: FieldRange{-20, 20},
			Get: func(s *Settings) float32 { return s.Params.Gravity[1] },
			Set: func(s *Settings, v float32) { s.Params.Gravity[1] = v },
		},
		{
			ID: "viscosity", Label: "Viscosity", Format: "%.3f", Range: FieldRange{0, 1},
			Get: func(s *Settings) float32 { return s.Params.Viscosity },
			Set: func(s *Settings, v float32) { s.Params.Viscosity = v },
		},
		{
			ID: "gas_constant", Label: "Gas Constant", Format: "%.0f", Range: FieldRange{100, 10000},
			Get: func(s *Settings) float32 { return s.Params.GasConstant },
			Set: func(s *Settings, v float32) { s.Params.GasConstant = v },
		},
		{
			ID: "rest_density", Label: "Rest Density", Format: "%.0f", Range: FieldRange{500, 2000},
			Get: func(s *Settings) float32 { return s.Params.RestDensity },
			Set: func(s *Settings, v float32) { s.Params.RestDensity = v },
		},
		{
			ID: "smoothing_radius", Label: "Smoothing Radius", Format: "%.3f", Range: FieldRange{0.01, 0.5},
			Get: func(s *Settings) float32 { return s.Params.SmoothingRadius },
			Set: func(s *Settings, v float32) { s.Params.SmoothingRadius = v },
		},
		{
			ID: "damping", Label: "Damping", Format: "%.2f", Range: FieldRange{0, 1},
			Get: func(s *Settings) float32 { return s.Params.DampingCoefficient },
			Set: func(s *Settings, v float32) { s.Params.DampingCoefficient = v },
		},
	}
}

// Apply writes v, clamped to the slider's range, into s and reports the
// resulting change. An unchanged value reports no change.
func Apply(s *Settings, sd SliderDescriptor, v float32) ParamsChange {
	before := *s
	sd.Set(s, sd.Range.Clamp(v))
	if *s == before {
		return ParamsChange{}
	}
	switch sd.Kind {
	case SliderCount:
		return ParamsChange{Count: true}
	case SliderStep:
		return ParamsChange{Step: true}
	default:
		return ParamsChange{Params: true}
	}
}

// ParamsPanel renders the parameter sliders.
type ParamsPanel struct {
	renderer *Renderer
	sliders  []SliderDescriptor
	x, y     int32
	width    int32
	visible  bool
}

// NewParamsPanel creates a visible panel for the given sliders.
func NewParamsPanel(x, y, width int32, sliders []SliderDescriptor) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		sliders:  sliders,
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Sliders returns the panel's slider descriptors.
func (p *ParamsPanel) Sliders() []SliderDescriptor {
	return p.sliders
}

// SetPosition updates the panel position.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// IsVisible returns whether the panel is shown.
func (p *ParamsPanel) IsVisible() bool {
	return p.visible
}

// Toggle switches panel visibility.
func (p *ParamsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Contains reports whether a screen point lies on the panel, so the driver
// can keep slider drags from panning the camera.
func (p *ParamsPanel) Contains(pt rl.Vector2) bool {
	if !p.visible {
		return false
	}
	rect := rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.Height())}
	return rl.CheckCollisionPointRec(pt, rect)
}

// Height returns the panel height in pixels.
func (p *ParamsPanel) Height() int32 {
	t := p.renderer.Theme
	perSlider := t.LineHeight - 2 + t.SliderHeight + 6
	return t.Padding*2 + t.LineHeight + 2 + int32(len(p.sliders))*perSlider + 28
}

// Draw renders the sliders, applies any interaction to s and reports what changed.
func (p *ParamsPanel) Draw(s *Settings) ParamsChange {
	var change ParamsChange
	if !p.visible {
		return change
	}

	r := p.renderer
	pad := r.Theme.Padding
	inner := p.width - pad*2

	r.DrawPanel(p.x, p.y, p.width, p.Height())
	y := r.DrawSectionHeader(p.x+pad, p.y+pad, "Simulation Parameters")

	for _, sd := range p.sliders {
		var v float32
		y, v = r.DrawSlider(p.x+pad, y, sd, sd.Get(s), inner)
		change.merge(Apply(s, sd, v))
	}

	_, pressed := r.DrawButton(p.x+pad, y, inner, "Reset Simulation")
	change.Reset = change.Reset || pressed

	return change
}
