package telemetry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/sph/fluid"
)

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(1.0)

	if c.ShouldFlush(0.5) {
		t.Error("window should not flush before its duration elapses")
	}
	if !c.ShouldFlush(1.0) {
		t.Error("window should flush once its duration elapses")
	}

	c.Flush(100, 1.0, nil, 1000)
	if c.ShouldFlush(1.5) {
		t.Error("next window starts where the last one ended")
	}
	if !c.ShouldFlush(2.0) {
		t.Error("expected second window to flush at 2.0")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0)
	for i := 0; i < 10; i++ {
		c.RecordStep()
	}

	particles := []fluid.Particle{
		{Position: mgl32.Vec2{0, 0}, Velocity: mgl32.Vec2{3, 4}, Mass: 1, Density: 900, Pressure: 0},
		{Position: mgl32.Vec2{2, 0}, Velocity: mgl32.Vec2{0, 0}, Mass: 1, Density: 1100, Pressure: 200000},
		{Position: mgl32.Vec2{float32(math.NaN()), 0}, Mass: 1},
	}

	stats := c.Flush(10, 0.1, particles, 1000)

	if stats.Steps != 10 {
		t.Errorf("Steps = %d, want 10", stats.Steps)
	}
	if stats.Particles != 3 || stats.NonFinite != 1 {
		t.Errorf("Particles/NonFinite = %d/%d, want 3/1", stats.Particles, stats.NonFinite)
	}
	if math.Abs(stats.DensityMean-1000) > 1e-6 {
		t.Errorf("DensityMean = %v, want 1000", stats.DensityMean)
	}
	if math.Abs(stats.CompressionRatio-1) > 1e-9 {
		t.Errorf("CompressionRatio = %v, want 1", stats.CompressionRatio)
	}
	if stats.PressureMax != 200000 {
		t.Errorf("PressureMax = %v, want 200000", stats.PressureMax)
	}
	if math.Abs(stats.KineticEnergy-12.5) > 1e-6 {
		t.Errorf("KineticEnergy = %v, want 12.5", stats.KineticEnergy)
	}
	if math.Abs(stats.SpeedMax-5) > 1e-6 {
		t.Errorf("SpeedMax = %v, want 5", stats.SpeedMax)
	}
	if math.Abs(stats.CenterX-1) > 1e-6 || stats.CenterY != 0 {
		t.Errorf("center = (%v, %v), want (1, 0)", stats.CenterX, stats.CenterY)
	}

	next := c.Flush(20, 0.2, nil, 1000)
	if next.Steps != 0 {
		t.Errorf("counters not reset after flush: Steps = %d", next.Steps)
	}
	if next.WindowStartStep != 10 {
		t.Errorf("WindowStartStep = %d, want 10", next.WindowStartStep)
	}
}

func TestCollectorReinitRestartsWindow(t *testing.T) {
	c := NewCollector(1.0)
	c.Flush(500, 5.0, nil, 1000)

	c.RecordReinit()
	if c.ShouldFlush(0.5) {
		t.Error("window should restart at time zero after reinit")
	}
	stats := c.Flush(100, 1.0, nil, 1000)
	if stats.Reinits != 1 {
		t.Errorf("Reinits = %d, want 1", stats.Reinits)
	}
	if stats.WindowStartStep != 0 {
		t.Errorf("WindowStartStep = %d, want 0", stats.WindowStartStep)
	}
}

func TestCollectorFromSimulation(t *testing.T) {
	sim, err := fluid.New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sim.Initialize(200); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	c := NewCollector(0.035)
	var flushed []WindowStats
	for i := 0; i < 20; i++ {
		if err := sim.Update(0.01); err != nil {
			t.Fatalf("Update: %v", err)
		}
		c.RecordStep()
		if c.ShouldFlush(sim.Time()) {
			flushed = append(flushed, c.Flush(sim.Step(), sim.Time(), sim.Particles(), sim.RestDensity()))
		}
	}

	if len(flushed) < 3 {
		t.Fatalf("expected at least 3 windows, got %d", len(flushed))
	}
	for i, s := range flushed {
		if s.Particles != 200 {
			t.Errorf("window %d: Particles = %d, want 200", i, s.Particles)
		}
		if s.DensityMin <= 0 {
			t.Errorf("window %d: density min %v should be positive", i, s.DensityMin)
		}
		if s.PressureMean < 0 {
			t.Errorf("window %d: pressure mean %v should be non-negative", i, s.PressureMean)
		}
	}
}
