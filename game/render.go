package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/ui"
)

// Draw renders the frame and runs the parameter panel. Panel edits are
// applied here, between steps.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(renderer.BackgroundColor)

	start := time.Now()
	g.containerRenderer.Draw()
	g.particleRenderer.Draw(g.sim.Particles())
	g.renderTime = time.Since(start)

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) drawUI() {
	d := g.sim.Diagnostics()
	clients := -1
	if g.clientCount != nil {
		clients = g.clientCount()
	}

	g.hud.Draw(ui.HUDData{
		Title:          "SPH Fluid",
		Particles:      d.Particles,
		NonFinite:      d.NonFinite,
		Step:           g.sim.Step(),
		SimTime:        g.sim.Time(),
		DT:             g.settings.DT,
		StepsPerUpdate: g.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         g.paused,
		MaxSpeed:       d.MaxSpeed,
		KineticEnergy:  d.KineticEnergy,
		Clients:        clients,
	})

	stats := g.perfCollector.Stats()
	g.perfPanel.Draw(ui.PerfPanelData{
		Stats:      stats,
		FrameTime:  stats.FrameDuration,
		RenderTime: g.renderTime,
	})

	if change := g.paramsPanel.Draw(&g.settings); change.Any() {
		g.applySettings(change)
	}

	g.hud.DrawControls(int32(g.screenHeight), Controls)
}
