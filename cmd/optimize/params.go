package main

import (
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Gravity, rest density and smoothing radius stay fixed; they define the
// fluid being tuned rather than how stably it integrates.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "gas_constant", Path: "fluid.gas_constant", Min: 100, Max: 8000, Default: 2000},
			{Name: "viscosity", Path: "fluid.viscosity", Min: 0, Max: 2.0, Default: 0.1},
			{Name: "damping", Path: "fluid.damping", Min: 0.05, Max: 1.0, Default: 0.5},
			{Name: "dt", Path: "physics.dt", Min: 0.001, Max: 0.05, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// FromConfig reads the current parameter values from cfg.
func (pv *ParamVector) FromConfig(cfg *config.Config) []float64 {
	return pv.Clamp([]float64{
		cfg.Fluid.GasConstant,
		cfg.Fluid.Viscosity,
		cfg.Fluid.Damping,
		cfg.Physics.DT,
	})
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply returns base with the vector's fluid parameters substituted, and
// the time step. Order must match Specs.
func (pv *ParamVector) Apply(base fluid.Params, values []float64) (fluid.Params, float32) {
	c := pv.Clamp(values)
	p := base
	p.GasConstant = float32(c[0])
	p.Viscosity = float32(c[1])
	p.DampingCoefficient = float32(c[2])
	return p, float32(c[3])
}

// ApplyToConfig writes parameter values into cfg's YAML fields.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Fluid.GasConstant = c[0]
	cfg.Fluid.Viscosity = c[1]
	cfg.Fluid.Damping = c[2]
	cfg.Physics.DT = c[3]
}
