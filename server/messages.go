package server

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/sph/fluid"
)

// ParamsMessage is the wire form of fluid.Params.
type ParamsMessage struct {
	GravityX        float32 `json:"gravity_x"`
	GravityY        float32 `json:"gravity_y"`
	Viscosity       float32 `json:"viscosity"`
	GasConstant     float32 `json:"gas_constant"`
	RestDensity     float32 `json:"rest_density"`
	SmoothingRadius float32 `json:"smoothing_radius"`
	Damping         float32 `json:"damping"`
}

// FrameMessage is one frame as sent to clients. Positions and densities are
// flattened; particle i sits at Positions[2i], Positions[2i+1]. Particles
// with non-finite state are left out and counted in NonFinite.
type FrameMessage struct {
	Type      string        `json:"type"`
	Step      uint64        `json:"step"`
	Time      float64       `json:"time"`
	Width     float32       `json:"width"`
	Height    float32       `json:"height"`
	Params    ParamsMessage `json:"params"`
	Count     int           `json:"count"`
	NonFinite int           `json:"non_finite"`
	Positions []float32     `json:"positions"`
	Densities []float32     `json:"densities"`
}

// NewFrameMessage converts a frame to its wire form.
func NewFrameMessage(f *fluid.Frame) FrameMessage {
	msg := FrameMessage{
		Type:   "frame",
		Step:   f.Step,
		Time:   f.Time,
		Width:  f.Width,
		Height: f.Height,
		Params: ParamsMessage{
			GravityX:        f.Params.Gravity[0],
			GravityY:        f.Params.Gravity[1],
			Viscosity:       f.Params.Viscosity,
			GasConstant:     f.Params.GasConstant,
			RestDensity:     f.Params.RestDensity,
			SmoothingRadius: f.Params.SmoothingRadius,
			Damping:         f.Params.DampingCoefficient,
		},
		Positions: make([]float32, 0, 2*len(f.Particles)),
		Densities: make([]float32, 0, len(f.Particles)),
	}
	for i := range f.Particles {
		p := &f.Particles[i]
		if !p.IsFinite() {
			msg.NonFinite++
			continue
		}
		msg.Positions = append(msg.Positions, p.Position[0], p.Position[1])
		msg.Densities = append(msg.Densities, p.Density)
	}
	msg.Count = len(msg.Densities)
	return msg
}

// ParamUpdate is a partial change requested by a client. Nil fields are
// left unchanged, e.g. {"viscosity": 0.2}.
type ParamUpdate struct {
	GravityX        *float32 `json:"gravity_x,omitempty"`
	GravityY        *float32 `json:"gravity_y,omitempty"`
	Viscosity       *float32 `json:"viscosity,omitempty"`
	GasConstant     *float32 `json:"gas_constant,omitempty"`
	RestDensity     *float32 `json:"rest_density,omitempty"`
	SmoothingRadius *float32 `json:"smoothing_radius,omitempty"`
	Damping         *float32 `json:"damping,omitempty"`
	DT              *float32 `json:"dt,omitempty"`
	Particles       *int     `json:"particles,omitempty"`
	Reset           bool     `json:"reset,omitempty"`
}

// Apply returns p with the update's parameter fields written over it.
func (u ParamUpdate) Apply(p fluid.Params) fluid.Params {
	set := func(dst *float32, src *float32) {
		if src != nil {
			*dst = *src
		}
	}
	gx, gy := p.Gravity[0], p.Gravity[1]
	set(&gx, u.GravityX)
	set(&gy, u.GravityY)
	p.Gravity = mgl32.Vec2{gx, gy}
	set(&p.Viscosity, u.Viscosity)
	set(&p.GasConstant, u.GasConstant)
	set(&p.RestDensity, u.RestDensity)
	set(&p.SmoothingRadius, u.SmoothingRadius)
	set(&p.DampingCoefficient, u.Damping)
	return p
}

// ChangesParams reports whether any engine parameter is set.
func (u ParamUpdate) ChangesParams() bool {
	return u.GravityX != nil || u.GravityY != nil || u.Viscosity != nil ||
		u.GasConstant != nil || u.RestDensity != nil || u.SmoothingRadius != nil ||
		u.Damping != nil
}
