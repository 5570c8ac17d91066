package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/server"
	"github.com/pthm-cable/sph/telemetry"
)

func init() {
	config.MustInit("")
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.ParticleCount == 0 {
		opts.ParticleCount = 100
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func ptr[T any](v T) *T { return &v }

func TestHeadlessStepsAndPublishes(t *testing.T) {
	var pub fluid.FramePublisher
	g := newHeadless(t, Options{Publisher: &pub})

	if pub.Seq() != 1 {
		t.Fatalf("expected the initial state to be published, seq = %d", pub.Seq())
	}

	for i := 0; i < 3; i++ {
		g.UpdateHeadless()
	}

	if g.Step() != 3 {
		t.Errorf("Step = %d, want 3", g.Step())
	}
	if pub.Seq() != 4 {
		t.Errorf("Seq = %d, want 4", pub.Seq())
	}
	if f := pub.Latest(); f == nil || f.Step != 3 || len(f.Particles) != 100 {
		t.Errorf("latest frame = %+v", f)
	}
}

func TestStepsPerUpdate(t *testing.T) {
	g := newHeadless(t, Options{StepsPerUpdate: 4})

	g.UpdateHeadless()

	if g.Step() != 4 {
		t.Errorf("Step = %d, want 4", g.Step())
	}
}

func TestPausedDoesNotStep(t *testing.T) {
	g := newHeadless(t, Options{})
	g.SetPaused(true)

	g.UpdateHeadless()

	if g.Step() != 0 {
		t.Errorf("Step = %d, want 0 while paused", g.Step())
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	a := newHeadless(t, Options{Seed: 7})
	b := newHeadless(t, Options{Seed: 7})

	pa, pb := a.Simulation().Particles(), b.Simulation().Particles()
	for i := range pa {
		if pa[i].Position != pb[i].Position {
			t.Fatalf("particle %d differs: %v vs %v", i, pa[i].Position, pb[i].Position)
		}
	}
}

func TestRemoteUpdates(t *testing.T) {
	updates := make(chan server.ParamUpdate, 4)
	g := newHeadless(t, Options{Updates: updates})

	updates <- server.ParamUpdate{Viscosity: ptr(float32(0.3))}
	updates <- server.ParamUpdate{DT: ptr(float32(1.0)), Particles: ptr(200)}
	g.UpdateHeadless()

	if got := g.Simulation().Viscosity(); got != 0.3 {
		t.Errorf("Viscosity = %v, want 0.3", got)
	}
	if g.DT() != float32(config.Cfg().Physics.DTMax) {
		t.Errorf("DT = %v, want clamp to %v", g.DT(), config.Cfg().Physics.DTMax)
	}
	if g.Simulation().Len() != 200 {
		t.Errorf("Len = %d, want 200", g.Simulation().Len())
	}
	// Re-initialized before this update's step ran
	if g.Step() != 1 {
		t.Errorf("Step = %d, want 1", g.Step())
	}
}

func TestRemoteRejectsInvalidSmoothingRadius(t *testing.T) {
	updates := make(chan server.ParamUpdate, 1)
	g := newHeadless(t, Options{Updates: updates})

	updates <- server.ParamUpdate{SmoothingRadius: ptr(float32(0))}
	g.UpdateHeadless()

	if got := g.Simulation().SmoothingRadius(); got != 0.1 {
		t.Errorf("SmoothingRadius = %v, want unchanged 0.1", got)
	}
	if g.settings.Params.SmoothingRadius != 0.1 {
		t.Errorf("panel settings not reverted: %v", g.settings.Params.SmoothingRadius)
	}
}

func TestRemoteReset(t *testing.T) {
	updates := make(chan server.ParamUpdate, 1)
	g := newHeadless(t, Options{Updates: updates})

	for i := 0; i < 5; i++ {
		g.UpdateHeadless()
	}
	updates <- server.ParamUpdate{Reset: true}
	g.UpdateHeadless()

	if g.Step() != 1 {
		t.Errorf("Step = %d, want 1 after reset", g.Step())
	}
	if g.Simulation().Len() != 100 {
		t.Errorf("Len = %d, want 100", g.Simulation().Len())
	}
}

func TestClosedUpdatesChannel(t *testing.T) {
	updates := make(chan server.ParamUpdate)
	close(updates)
	g := newHeadless(t, Options{Updates: updates})

	g.UpdateHeadless()
	g.UpdateHeadless()

	if g.Step() != 2 {
		t.Errorf("Step = %d, want 2", g.Step())
	}
}

func TestNonFiniteReportedOnceAndClearedByReset(t *testing.T) {
	g := newHeadless(t, Options{})

	g.Simulation().Particles()[0].Mass = 0
	g.UpdateHeadless()

	if !g.unstable {
		t.Fatal("expected non-finite state to be detected")
	}
	if g.Paused() {
		t.Error("degenerate numerics should not pause the driver")
	}

	if err := g.Reinitialize(100); err != nil {
		t.Fatalf("Reinitialize: %v", err)
	}
	if g.unstable {
		t.Error("reinitialize should clear the unstable flag")
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats

	g, err := NewGameWithOptions(Options{
		Seed:           1,
		Headless:       true,
		ParticleCount:  50,
		StatsWindowSec: 0.03,
		OutputDir:      dir,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	for i := 0; i < 20; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	if len(windows) < 3 {
		t.Fatalf("expected at least 3 stats windows, got %d", len(windows))
	}
	for _, w := range windows {
		if w.Particles != 50 {
			t.Errorf("window particles = %d, want 50", w.Particles)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(windows)+1 {
		t.Errorf("telemetry.csv has %d lines, want %d", len(lines), len(windows)+1)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
