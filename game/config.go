package game

import (
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/server"
	"github.com/pthm-cable/sph/telemetry"
)

// Steps-per-update bounds for the , and . keys.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)

// Options configures a Game beyond what config.Cfg() provides.
type Options struct {
	Seed           int64 // 0 = time-based
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // empty = no CSV output
	Headless       bool
	StepsPerUpdate int // 0 = use config
	ParticleCount  int // 0 = use config

	// Publisher receives a frame after every step when set.
	Publisher *fluid.FramePublisher

	// Updates carries parameter changes from remote clients. They are
	// applied between steps.
	Updates <-chan server.ParamUpdate

	// ClientCount reports connected viewers for the HUD.
	ClientCount func() int

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
