// Package ui provides a descriptor-driven UI for the fluid simulation.
// Panels are defined through slider and field metadata rather than
// hard-coded layouts.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/fluid"
)

// FieldRange defines the value range for sliders and bars.
type FieldRange struct {
	Min float32
	Max float32
}

// Clamp restricts v to the range.
func (r FieldRange) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Settings is the set of values the parameter panel edits.
type Settings struct {
	ParticleCount int
	DT            float32
	Params        fluid.Params
}

// SliderKind says what a slider change requires from the driver.
type SliderKind int

const (
	SliderParam SliderKind = iota // applied to the engine between steps
	SliderCount                   // re-initializes the particle set
	SliderStep                    // changes the driver's time step
)

// SliderDescriptor defines one slider on the parameter panel.
type SliderDescriptor struct {
	ID     string
	Label  string
	Format string // Printf format for the value readout
	Range  FieldRange
	Kind   SliderKind
	Get    func(*Settings) float32
	Set    func(*Settings, float32)
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	WarnColor      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	SliderHeight   int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		WarnColor:      rl.Color{R: 230, G: 90, B: 90, A: 255},
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillHigh:    rl.Color{R: 200, G: 100, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     110,
		BarHeight:      12,
		SliderHeight:   16,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
