package fluid

import "sync/atomic"

// Frame is an immutable copy of the simulation after a completed step.
type Frame struct {
	Step      uint64
	Time      float64
	Width     float32
	Height    float32
	Params    Params
	Particles []Particle
}

// Snapshot copies the current state into a new Frame.
func (s *Simulation) Snapshot() *Frame {
	particles := make([]Particle, len(s.particles))
	copy(particles, s.particles)
	return &Frame{
		Step:      s.step,
		Time:      s.simTime,
		Width:     s.width,
		Height:    s.height,
		Params:    s.params,
		Particles: particles,
	}
}

// FramePublisher hands finished frames from the simulation goroutine to any
// number of readers. Readers never observe a step in progress: a frame is
// built completely before the pointer swap makes it visible.
type FramePublisher struct {
	latest atomic.Pointer[Frame]
	seq    atomic.Uint64
}

// Publish snapshots s and makes it the latest frame.
// Must be called from the goroutine that owns s, between updates.
func (p *FramePublisher) Publish(s *Simulation) *Frame {
	f := s.Snapshot()
	p.latest.Store(f)
	p.seq.Add(1)
	return f
}

// Latest returns the most recent frame, or nil if nothing was published.
func (p *FramePublisher) Latest() *Frame {
	return p.latest.Load()
}

// Seq returns how many frames have been published.
func (p *FramePublisher) Seq() uint64 {
	return p.seq.Load()
}
