package fluid

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidParticleCount is returned when Initialize gets a negative count.
	ErrInvalidParticleCount = errors.New("particle count must be >= 0")
	// ErrInvalidTimeStep is returned when Update gets a non-positive or non-finite dt.
	ErrInvalidTimeStep = errors.New("time step must be a finite value > 0")
	// ErrInvalidSmoothingRadius is returned for a non-positive or non-finite radius.
	ErrInvalidSmoothingRadius = errors.New("smoothing radius must be a finite value > 0")
	// ErrInvalidDomain is returned for a non-positive domain width or height.
	ErrInvalidDomain = errors.New("domain width and height must be > 0")
)

// Params holds the tunable simulation parameters.
// Damping outside [0, 1] is accepted but makes wall collisions gain energy.
type Params struct {
	Gravity            mgl32.Vec2
	Viscosity          float32
	GasConstant        float32
	RestDensity        float32
	SmoothingRadius    float32
	DampingCoefficient float32
}

// DefaultParams returns the stock water-like parameter set.
func DefaultParams() Params {
	return Params{
		Gravity:            mgl32.Vec2{0, -9.81},
		Viscosity:          0.1,
		GasConstant:        2000,
		RestDensity:        1000,
		SmoothingRadius:    0.1,
		DampingCoefficient: 0.5,
	}
}

// Validate checks the only constraint the pipeline depends on.
func (p Params) Validate() error {
	if !(p.SmoothingRadius > 0) || !finite(p.SmoothingRadius) {
		return fmt.Errorf("smoothing radius %v: %w", p.SmoothingRadius, ErrInvalidSmoothingRadius)
	}
	return nil
}

func validateDomain(width, height float32) error {
	if !(width > 0) || !(height > 0) || !finite(width) || !finite(height) {
		return fmt.Errorf("domain %vx%v: %w", width, height, ErrInvalidDomain)
	}
	return nil
}

// Params returns a copy of the current parameters.
func (s *Simulation) Params() Params {
	return s.params
}

// SetParams replaces all parameters at once. Rejected sets leave the
// current parameters untouched.
func (s *Simulation) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// Gravity returns the gravity acceleration vector.
func (s *Simulation) Gravity() mgl32.Vec2 { return s.params.Gravity }

// SetGravity sets the gravity acceleration vector.
func (s *Simulation) SetGravity(g mgl32.Vec2) { s.params.Gravity = g }

// Viscosity returns the viscosity coefficient.
func (s *Simulation) Viscosity() float32 { return s.params.Viscosity }

// SetViscosity sets the viscosity coefficient.
func (s *Simulation) SetViscosity(v float32) { s.params.Viscosity = v }

// GasConstant returns the equation-of-state stiffness.
func (s *Simulation) GasConstant() float32 { return s.params.GasConstant }

// SetGasConstant sets the equation-of-state stiffness.
func (s *Simulation) SetGasConstant(k float32) { s.params.GasConstant = k }

// RestDensity returns the rest density.
func (s *Simulation) RestDensity() float32 { return s.params.RestDensity }

// SetRestDensity sets the rest density.
func (s *Simulation) SetRestDensity(rho0 float32) { s.params.RestDensity = rho0 }

// SmoothingRadius returns the kernel support radius.
func (s *Simulation) SmoothingRadius() float32 { return s.params.SmoothingRadius }

// SetSmoothingRadius sets the kernel support radius. Non-positive values are rejected.
func (s *Simulation) SetSmoothingRadius(h float32) error {
	p := s.params
	p.SmoothingRadius = h
	return s.SetParams(p)
}

// DampingCoefficient returns the wall restitution factor.
func (s *Simulation) DampingCoefficient() float32 { return s.params.DampingCoefficient }

// SetDampingCoefficient sets the wall restitution factor.
func (s *Simulation) SetDampingCoefficient(d float32) { s.params.DampingCoefficient = d }

// Width returns the domain width.
func (s *Simulation) Width() float32 { return s.width }

// Height returns the domain height.
func (s *Simulation) Height() float32 { return s.height }

// SetDomain resizes the container. Particles outside the new bounds are
// pulled back by the next boundary pass.
func (s *Simulation) SetDomain(width, height float32) error {
	if err := validateDomain(width, height); err != nil {
		return err
	}
	s.width = width
	s.height = height
	return nil
}
