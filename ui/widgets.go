package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a bar for a value in [0, max], switching to the high color
// above the warn fraction.
func (r *Renderer) DrawBar(x, y int32, label string, value, maxVal, warn float32, width int32) int32 {
	ratio := float32(0)
	if maxVal > 0 {
		ratio = FieldRange{Min: 0, Max: 1}.Clamp(value / maxVal)
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	fill := r.Theme.BarFill
	if ratio > warn {
		fill = r.Theme.BarFillHigh
	}
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*ratio), r.Theme.BarHeight, fill)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}

// DrawSlider draws a labelled raygui slider bar with a value readout and
// returns the new Y position and the slider's value after interaction.
func (r *Renderer) DrawSlider(x, y int32, sd SliderDescriptor, value float32, width int32) (int32, float32) {
	rl.DrawText(sd.Label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight - 2

	bounds := rl.Rectangle{
		X:      float32(x),
		Y:      float32(y),
		Width:  float32(width - 60),
		Height: float32(r.Theme.SliderHeight),
	}
	next := gui.SliderBar(bounds, "", "", value, sd.Range.Min, sd.Range.Max)
	rl.DrawText(fmt.Sprintf(sd.Format, value), x+width-55, y+2, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.SliderHeight + 6, next
}

// DrawButton draws a raygui button and reports whether it was pressed.
func (r *Renderer) DrawButton(x, y, width int32, text string) (int32, bool) {
	bounds := rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width), Height: 22}
	pressed := gui.Button(bounds, text)
	return y + 28, pressed
}
