// Package fluid implements a 2D weakly-compressible SPH fluid.
//
// A Simulation owns its particles and parameters and advances them with a
// fixed four-pass pipeline: density/pressure, forces, integration and
// boundaries. Neighbors are found by brute force over all pairs, so a step
// costs O(n²). A Simulation is not safe for concurrent use; see
// FramePublisher for handing finished steps to other goroutines.
package fluid

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Pass names reported to a PassTimer.
const (
	PassDensity    = "density"
	PassForces     = "forces"
	PassIntegrate  = "integrate"
	PassBoundaries = "boundaries"
)

// PassTimer receives a call as each pipeline pass begins.
type PassTimer interface {
	StartPhase(phase string)
}

// Initial block of fluid, as fractions of the domain.
const (
	spawnMinX = 0.25
	spawnMaxX = 0.75
	spawnMinY = 0.5
	spawnMaxY = 0.9
)

// DefaultMass is the mass given to every particle by Initialize.
const DefaultMass = 1.0

// Simulation is the SPH engine.
type Simulation struct {
	width, height float32
	params        Params
	particles     []Particle

	rng   *rand.Rand
	timer PassTimer

	// Two-phase buffers for the density pass
	density  []float32
	pressure []float32

	step    uint64
	simTime float64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRand sets the generator used to place particles. Without it the
// generator is seeded from the clock.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) {
		s.rng = rng
	}
}

// WithParams sets the initial parameters instead of DefaultParams.
func WithParams(p Params) Option {
	return func(s *Simulation) {
		s.params = p
	}
}

// WithPassTimer reports pass boundaries to t.
func WithPassTimer(t PassTimer) Option {
	return func(s *Simulation) {
		s.timer = t
	}
}

// New creates an empty simulation over a width x height domain.
func New(width, height float32, opts ...Option) (*Simulation, error) {
	if err := validateDomain(width, height); err != nil {
		return nil, err
	}

	s := &Simulation{
		width:  width,
		height: height,
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return s, nil
}

// Initialize replaces all particles with n fresh ones at rest, placed
// uniformly in the upper-central block of the domain.
func (s *Simulation) Initialize(n int) error {
	if n < 0 {
		return fmt.Errorf("initialize %d particles: %w", n, ErrInvalidParticleCount)
	}

	minX, maxX := s.width*spawnMinX, s.width*spawnMaxX
	minY, maxY := s.height*spawnMinY, s.height*spawnMaxY

	particles := make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		pos := mgl32.Vec2{
			minX + s.rng.Float32()*(maxX-minX),
			minY + s.rng.Float32()*(maxY-minY),
		}
		particles = append(particles, NewParticle(pos, mgl32.Vec2{}, DefaultMass))
	}

	s.particles = particles
	s.density = s.density[:0]
	s.pressure = s.pressure[:0]
	s.step = 0
	s.simTime = 0
	return nil
}

// Update advances the simulation by dt seconds. An invalid dt is rejected
// before any particle is touched.
func (s *Simulation) Update(dt float32) error {
	if !(dt > 0) || !finite(dt) {
		return fmt.Errorf("update dt=%v: %w", dt, ErrInvalidTimeStep)
	}

	s.startPass(PassDensity)
	s.computeDensityPressure()

	s.startPass(PassForces)
	s.computeForces()

	s.startPass(PassIntegrate)
	s.integrate(dt)

	s.startPass(PassBoundaries)
	s.handleBoundaries()

	s.step++
	s.simTime += float64(dt)
	return nil
}

func (s *Simulation) startPass(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// computeDensityPressure sums Poly6 contributions over every particle,
// self included. Results go to scratch buffers and are committed once the
// whole pass is done.
func (s *Simulation) computeDensityPressure() {
	h := s.params.SmoothingRadius
	gasConstant := s.params.GasConstant
	restDensity := s.params.RestDensity

	n := len(s.particles)
	s.density = resize(s.density, n)
	s.pressure = resize(s.pressure, n)

	for i := range s.particles {
		pi := &s.particles[i]

		var density float32
		for j := range s.particles {
			pj := &s.particles[j]
			density += pj.Mass * Poly6W(pi.Position.Sub(pj.Position), h)
		}

		// Tension is not allowed
		pressure := gasConstant * (density - restDensity)
		if pressure < 0 {
			pressure = 0
		}

		s.density[i] = density
		s.pressure[i] = pressure
	}

	for i := range s.particles {
		s.particles[i].Density = s.density[i]
		s.particles[i].Pressure = s.pressure[i]
	}
}

// computeForces accumulates gravity, pressure and viscosity forces.
// The pressure term normalizes by the neighbor density only, which does not
// conserve momentum exactly.
func (s *Simulation) computeForces() {
	h := s.params.SmoothingRadius
	gravity := s.params.Gravity
	viscosity := s.params.Viscosity

	for i := range s.particles {
		pi := &s.particles[i]

		pi.ResetForce()
		pi.Force = pi.Force.Add(gravity.Mul(pi.Mass))

		for j := range s.particles {
			if i == j {
				continue
			}
			pj := &s.particles[j]

			r := pi.Position.Sub(pj.Position)
			if r.Len() >= h {
				continue
			}

			pressureForce := SpikyGradient(r, h).Mul(
				-pj.Mass * (pi.Pressure + pj.Pressure) / (2 * pj.Density))

			viscosityForce := pj.Velocity.Sub(pi.Velocity).Mul(
				viscosity * pj.Mass / pj.Density * ViscosityLaplacian(r, h))

			pi.Force = pi.Force.Add(pressureForce.Add(viscosityForce))
		}
	}
}

// integrate applies semi-implicit Euler. Zero density is not guarded and
// yields non-finite state.
func (s *Simulation) integrate(dt float32) {
	for i := range s.particles {
		p := &s.particles[i]

		acceleration := mgl32.Vec2{p.Force[0] / p.Density, p.Force[1] / p.Density}
		p.Velocity = p.Velocity.Add(acceleration.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}
}

// handleBoundaries clamps each axis independently and reflects the velocity
// component with damping.
func (s *Simulation) handleBoundaries() {
	damping := s.params.DampingCoefficient

	for i := range s.particles {
		p := &s.particles[i]

		if p.Position[0] < 0 {
			p.Position[0] = 0
			p.Velocity[0] = -p.Velocity[0] * damping
		}
		if p.Position[0] > s.width {
			p.Position[0] = s.width
			p.Velocity[0] = -p.Velocity[0] * damping
		}
		if p.Position[1] < 0 {
			p.Position[1] = 0
			p.Velocity[1] = -p.Velocity[1] * damping
		}
		if p.Position[1] > s.height {
			p.Position[1] = s.height
			p.Velocity[1] = -p.Velocity[1] * damping
		}
	}
}

// Particles returns the current particles. The slice is owned by the
// simulation: callers must not modify it or hold it across Update calls.
func (s *Simulation) Particles() []Particle {
	return s.particles
}

// Len returns the number of particles.
func (s *Simulation) Len() int {
	return len(s.particles)
}

// Step returns the number of completed updates since Initialize.
func (s *Simulation) Step() uint64 {
	return s.step
}

// Time returns simulated seconds since Initialize.
func (s *Simulation) Time() float64 {
	return s.simTime
}

// Diagnostics summarizes numerical health.
type Diagnostics struct {
	Particles     int
	NonFinite     int
	KineticEnergy float64
	MaxSpeed      float32
}

// Diagnostics scans the particles for non-finite state and kinetic energy.
// Non-finite particles are excluded from the energy and speed figures.
func (s *Simulation) Diagnostics() Diagnostics {
	d := Diagnostics{Particles: len(s.particles)}
	for i := range s.particles {
		p := &s.particles[i]
		if !p.IsFinite() {
			d.NonFinite++
			continue
		}
		speed := p.Speed()
		d.KineticEnergy += 0.5 * float64(p.Mass) * float64(speed) * float64(speed)
		if speed > d.MaxSpeed {
			d.MaxSpeed = speed
		}
	}
	return d
}

// HasNonFinite reports whether any particle holds NaN or infinite values.
func (s *Simulation) HasNonFinite() bool {
	for i := range s.particles {
		if !s.particles[i].IsFinite() {
			return true
		}
	}
	return false
}

func resize(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
