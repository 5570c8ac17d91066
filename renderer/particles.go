// Package renderer draws fluid frames with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/fluid"
)

// Density at which particle color saturates to white.
const densityColorScale = 1500.0

// Point radius in screen pixels at zoom 1.
const particleRadius = 5.0

// nonFiniteColor marks particles whose state is NaN or infinite.
var nonFiniteColor = rl.Color{R: 255, G: 0, B: 255, A: 255}

// DensityColor maps density to a blue to cyan to white ramp.
func DensityColor(density float32) rl.Color {
	if density != density || density-density != 0 {
		return nonFiniteColor
	}
	n := density / densityColorScale
	n = max(0, min(n, 1))
	return rl.Color{
		R: uint8(n * 255),
		G: uint8((0.5 + 0.5*n) * 255),
		B: 255,
		A: 255,
	}
}

// ParticleRenderer renders fluid particles through a camera.
type ParticleRenderer struct {
	cam *camera.Camera
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(cam *camera.Camera) *ParticleRenderer {
	return &ParticleRenderer{cam: cam}
}

// Draw renders all visible particles, colored by density.
func (r *ParticleRenderer) Draw(particles []fluid.Particle) {
	radius := float32(particleRadius) * r.cam.Zoom
	worldRadius := radius / r.cam.Scale()

	for i := range particles {
		p := &particles[i]
		if !p.IsFinite() {
			continue
		}
		if !r.cam.IsVisible(p.Position[0], p.Position[1], worldRadius) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(p.Position[0], p.Position[1])
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, DensityColor(p.Density))
	}
}
