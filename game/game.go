// Package game drives the fluid simulation: stepping, input, telemetry,
// rendering and remote parameter updates.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/server"
	"github.com/pthm-cable/sph/telemetry"
	"github.com/pthm-cable/sph/ui"
)

// Game holds the complete driver state.
type Game struct {
	cfg *config.Config
	sim *fluid.Simulation
	seed int64

	// Values the parameter panel and remote clients edit
	settings       ui.Settings
	stepsPerUpdate int
	paused         bool
	unstable       bool // set once non-finite state has been reported

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	// Frame streaming
	publisher   *fluid.FramePublisher
	updates     <-chan server.ParamUpdate
	clientCount func() int

	// Rendering (nil when headless)
	headless          bool
	camera            *camera.Camera
	particleRenderer  *renderer.ParticleRenderer
	containerRenderer *renderer.ContainerRenderer
	hud               *ui.HUD
	paramsPanel       *ui.ParamsPanel
	perfPanel         *ui.PerfPanel
	screenWidth       float32
	screenHeight      float32
	renderTime        time.Duration
}

// NewGameWithOptions creates a driver from config.Cfg() and opts.
// Graphical mode requires an open raylib window.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	steps := cfg.Physics.StepsPerUpdate
	if opts.StepsPerUpdate > 0 {
		steps = opts.StepsPerUpdate
	}
	count := cfg.Particles.Count
	if opts.ParticleCount > 0 {
		count = opts.ParticleCount
	}

	g := &Game{
		cfg:              cfg,
		seed:             seed,
		stepsPerUpdate:   steps,
		collector:        telemetry.NewCollector(statsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		publisher:        opts.Publisher,
		updates:          opts.Updates,
		clientCount:      opts.ClientCount,
		headless:         opts.Headless,
		screenWidth:      cfg.Derived.ScreenW,
		screenHeight:     cfg.Derived.ScreenH,
		settings: ui.Settings{
			ParticleCount: count,
			DT:            cfg.Derived.DT32,
			Params:        cfg.Derived.Params,
		},
	}

	sim, err := fluid.New(cfg.Derived.DomainW, cfg.Derived.DomainH,
		fluid.WithRand(rand.New(rand.NewSource(seed))),
		fluid.WithParams(cfg.Derived.Params),
		fluid.WithPassTimer(g.perfCollector),
	)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	g.sim = sim

	if err := g.sim.Initialize(count); err != nil {
		return nil, fmt.Errorf("initializing particles: %w", err)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !g.headless {
		g.initRendering()
	}
	g.publish()

	slog.Info("simulation initialized",
		"particles", count,
		"domain_w", cfg.Derived.DomainW,
		"domain_h", cfg.Derived.DomainH,
		"seed", seed,
		"headless", g.headless,
	)
	return g, nil
}

func (g *Game) initRendering() {
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.cfg.Derived.DomainW, g.cfg.Derived.DomainH)
	g.particleRenderer = renderer.NewParticleRenderer(g.camera)
	g.containerRenderer = renderer.NewContainerRenderer(g.camera)
	g.hud = ui.NewHUD()

	sliders := ui.DefaultSliders(
		ui.FieldRange{Min: float32(g.cfg.Particles.Min), Max: float32(g.cfg.Particles.Max)},
		ui.FieldRange{Min: float32(g.cfg.Physics.DTMin), Max: float32(g.cfg.Physics.DTMax)},
	)
	const panelWidth = 260
	g.paramsPanel = ui.NewParamsPanel(int32(g.screenWidth)-panelWidth-10, 10, panelWidth, sliders)
	g.perfPanel = ui.NewPerfPanel(10, 100, 250)
}

// Update handles input, applies pending changes and advances the simulation.
func (g *Game) Update() {
	g.handleInput()
	g.UpdateHeadless()
}

// UpdateHeadless applies pending remote changes and runs stepsPerUpdate
// steps unless paused.
func (g *Game) UpdateHeadless() {
	g.drainUpdates()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.step(); err != nil {
			slog.Error("simulation step failed, pausing", "error", err)
			g.paused = true
			return
		}
	}
}

// step runs one timed simulation step followed by telemetry and publishing.
func (g *Game) step() error {
	g.perfCollector.StartStep()
	defer g.perfCollector.EndStep()

	if err := g.sim.Update(g.settings.DT); err != nil {
		return err
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordStep()
	g.checkStability()
	g.flushTelemetry()

	g.perfCollector.StartPhase(telemetry.PhasePublish)
	g.publish()
	return nil
}

// checkStability warns once when particle state stops being finite.
// The engine keeps running; R re-initializes.
func (g *Game) checkStability() {
	if g.unstable || !g.sim.HasNonFinite() {
		return
	}
	g.unstable = true
	d := g.sim.Diagnostics()
	slog.Warn("simulation produced non-finite state",
		"step", g.sim.Step(),
		"non_finite", d.NonFinite,
		"particles", d.Particles,
		"dt", g.settings.DT,
		"params", g.sim.Params(),
	)
}

func (g *Game) publish() {
	if g.publisher != nil {
		g.publisher.Publish(g.sim)
	}
}

// Reinitialize replaces the particle set with n fresh particles.
func (g *Game) Reinitialize(n int) error {
	if err := g.sim.Initialize(n); err != nil {
		return err
	}
	g.settings.ParticleCount = n
	g.unstable = false
	g.collector.RecordReinit()
	g.bookmarkDetector.Reset()
	g.publish()
	slog.Info("particles reinitialized", "particles", n)
	return nil
}

// applySettings pushes panel edits to the engine. Rejected parameter sets
// are reverted in the panel.
func (g *Game) applySettings(change ui.ParamsChange) {
	if change.Params {
		if err := g.sim.SetParams(g.settings.Params); err != nil {
			slog.Warn("rejected parameter change", "error", err)
			g.settings.Params = g.sim.Params()
		}
	}
	if change.Count || change.Reset {
		if err := g.Reinitialize(g.settings.ParticleCount); err != nil {
			slog.Warn("rejected particle count", "error", err)
			g.settings.ParticleCount = g.sim.Len()
		}
	}
}

// Unload releases resources.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Simulation returns the engine.
func (g *Game) Simulation() *fluid.Simulation { return g.sim }

// Step returns the number of completed simulation steps.
func (g *Game) Step() uint64 { return g.sim.Step() }

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes stepping.
func (g *Game) SetPaused(p bool) { g.paused = p }

// DT returns the current time step.
func (g *Game) DT() float32 { return g.settings.DT }

// StepsPerUpdate returns how many steps each update runs.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// Seed returns the RNG seed in use.
func (g *Game) Seed() int64 { return g.seed }
