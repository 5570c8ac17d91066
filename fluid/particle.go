package fluid

import "github.com/go-gl/mathgl/mgl32"

// Particle is one fluid sample.
// Density and Pressure are only meaningful after the density pass of the
// current step; Force only lives for the duration of a step.
type Particle struct {
	Position mgl32.Vec2
	Velocity mgl32.Vec2
	Force    mgl32.Vec2
	Mass     float32
	Density  float32
	Pressure float32
}

// NewParticle creates a particle with zero force, density and pressure.
func NewParticle(pos, vel mgl32.Vec2, mass float32) Particle {
	return Particle{
		Position: pos,
		Velocity: vel,
		Mass:     mass,
	}
}

// ResetForce zeroes the accumulated force.
func (p *Particle) ResetForce() {
	p.Force = mgl32.Vec2{}
}

// Speed returns the velocity magnitude.
func (p *Particle) Speed() float32 {
	return p.Velocity.Len()
}

// IsFinite reports whether every numeric field is neither NaN nor infinite.
func (p *Particle) IsFinite() bool {
	return finite(p.Position[0]) && finite(p.Position[1]) &&
		finite(p.Velocity[0]) && finite(p.Velocity[1]) &&
		finite(p.Density) && finite(p.Pressure)
}

// finite fails for NaN (v != v) and for ±Inf (Inf - Inf is NaN).
func finite(v float32) bool {
	return v == v && v-v == 0
}
