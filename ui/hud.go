package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Particles      int
	NonFinite      int
	Step           uint64
	SimTime        float64
	DT             float32
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	MaxSpeed       float32
	KineticEnergy  float64
	Clients        int // websocket viewers, -1 when the server is off
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Step: %d | t=%.2fs | dt=%.3f x%d", data.Particles, data.Step, data.SimTime, data.DT, data.StepsPerUpdate),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("FPS: %d | KE: %.3g | Max speed: %.3g", data.FPS, data.KineticEnergy, data.MaxSpeed),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	color := rl.Yellow
	switch {
	case data.NonFinite > 0:
		status = fmt.Sprintf("UNSTABLE: %d non-finite particles (press R)", data.NonFinite)
		color = h.renderer.Theme.WarnColor
	case data.Paused:
		status = "PAUSED"
	}
	if data.Clients >= 0 {
		status += fmt.Sprintf(" | viewers: %d", data.Clients)
	}
	rl.DrawText(status, 10, 75, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats      telemetry.PerfStats
	FrameTime  time.Duration
	RenderTime time.Duration
}

// PerfPanel renders frame timing and the per-phase step breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	r := p.renderer
	pad := r.Theme.Padding
	height := pad*2 + r.Theme.LineHeight*int32(4+len(telemetry.Phases)) + 2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Performance")

	fps := float64(0)
	if data.FrameTime > 0 {
		fps = float64(time.Second) / float64(data.FrameTime)
	}
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%.3f ms (%.1f FPS)", ms(data.FrameTime), fps))
	y = r.DrawLabelValue(x, y, "Simulation", fmt.Sprintf("%.3f ms", ms(data.Stats.AvgStepDuration)))
	y = r.DrawLabelValue(x, y, "Render", fmt.Sprintf("%.3f ms", ms(data.RenderTime)))

	for _, phase := range telemetry.Phases {
		avg := data.Stats.PhaseAvg[phase]
		pct := data.Stats.PhasePct[phase]
		color := r.Theme.LabelColor
		if pct > 50 {
			color = r.Theme.WarnColor
		}
		rl.DrawText(fmt.Sprintf("%-11s %8.3f ms %5.1f%%", phase, ms(avg), pct), x, y, r.Theme.FontSize, color)
		y += r.Theme.LineHeight
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
