package telemetry

import (
	"github.com/pthm-cable/sph/fluid"
)

// Collector accumulates step counts within windows of simulated time and
// produces WindowStats. Windows are measured in seconds rather than steps
// because dt can change between steps.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartStep uint64
	windowStartTime float64

	// Event counters for current window
	steps   int
	reinits int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordStep records a completed simulation step.
func (c *Collector) RecordStep() {
	c.steps++
}

// RecordReinit records a particle set replacement. The window restarts at
// simulated time zero.
func (c *Collector) RecordReinit() {
	c.reinits++
	c.windowStartStep = 0
	c.windowStartTime = 0
}

// ShouldFlush returns true if enough simulated time has passed to flush the window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}

// Flush produces a WindowStats from the given particles and resets counters
// for the next window. Non-finite particles are counted but excluded from
// every distribution.
func (c *Collector) Flush(step uint64, simTime float64, particles []fluid.Particle, restDensity float32) WindowStats {
	densities := make([]float64, 0, len(particles))
	pressures := make([]float64, 0, len(particles))
	speeds := make([]float64, 0, len(particles))

	var nonFinite int
	var kinetic, mass, cx, cy float64
	for i := range particles {
		p := &particles[i]
		if !p.IsFinite() {
			nonFinite++
			continue
		}
		speed := float64(p.Speed())
		m := float64(p.Mass)

		densities = append(densities, float64(p.Density))
		pressures = append(pressures, float64(p.Pressure))
		speeds = append(speeds, speed)

		kinetic += 0.5 * m * speed * speed
		mass += m
		cx += m * float64(p.Position[0])
		cy += m * float64(p.Position[1])
	}
	if mass > 0 {
		cx /= mass
		cy /= mass
	}

	density := Summarize(densities)
	pressure := Summarize(pressures)
	speed := Summarize(speeds)

	var compression float64
	if restDensity != 0 {
		compression = density.Mean / float64(restDensity)
	}

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   step,
		SimTimeSec:      simTime,
		Steps:           c.steps,
		Reinits:         c.reinits,

		Particles: len(particles),
		NonFinite: nonFinite,

		DensityMean: density.Mean,
		DensityStd:  density.Std,
		DensityMin:  density.Min,
		DensityP10:  density.P10,
		DensityP50:  density.P50,
		DensityP90:  density.P90,
		DensityMax:  density.Max,

		CompressionRatio: compression,

		PressureMean: pressure.Mean,
		PressureMax:  pressure.Max,

		KineticEnergy: kinetic,
		SpeedMean:     speed.Mean,
		SpeedMax:      speed.Max,

		CenterX: cx,
		CenterY: cy,
	}
	// Reset for next window
	c.windowStartStep = step
	c.windowStartTime = simTime
	c.steps = 0
	c.reinits = 0

	return stats
}
