// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sph/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Domain    DomainConfig    `yaml:"domain"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Particles ParticlesConfig `yaml:"particles"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Terminal  TerminalConfig  `yaml:"terminal"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DomainConfig holds the fluid container size in world units.
// The container can differ from the screen; the camera fits it to the window.
type DomainConfig struct {
	Width  float64 `yaml:"width"`  // 0 = use screen width
	Height float64 `yaml:"height"` // 0 = use screen height
}

// FluidConfig holds the SPH parameters.
type FluidConfig struct {
	GravityX        float64 `yaml:"gravity_x"`
	GravityY        float64 `yaml:"gravity_y"`
	Viscosity       float64 `yaml:"viscosity"`
	GasConstant     float64 `yaml:"gas_constant"`
	RestDensity     float64 `yaml:"rest_density"`
	SmoothingRadius float64 `yaml:"smoothing_radius"`
	Damping         float64 `yaml:"damping"` // Wall restitution, values above 1 gain energy
}

// ParticlesConfig holds particle count settings.
type ParticlesConfig struct {
	Count int `yaml:"count"`
	Min   int `yaml:"min"` // Slider lower bound
	Max   int `yaml:"max"` // Slider upper bound
}

// PhysicsConfig holds time stepping parameters.
type PhysicsConfig struct {
	DT             float64 `yaml:"dt"`
	DTMin          float64 `yaml:"dt_min"`
	DTMax          float64 `yaml:"dt_max"`
	StepsPerUpdate int     `yaml:"steps_per_update"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// ServerConfig holds websocket streaming parameters.
type ServerConfig struct {
	Addr        string  `yaml:"addr"` // Empty = disabled
	BroadcastHz float64 `yaml:"broadcast_hz"`
}

// TerminalConfig holds the ASCII viewer settings.
type TerminalConfig struct {
	FPS int `yaml:"fps"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32 // Physics.DT as float32
	DomainW  float32 // Effective domain width
	DomainH  float32 // Effective domain height
	ScreenW  float32
	ScreenH  float32
	Params   fluid.Params
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW = float32(c.Screen.Width)
	c.Derived.ScreenH = float32(c.Screen.Height)

	// Domain defaults to screen size if not specified
	w := c.Domain.Width
	if w == 0 {
		w = float64(c.Screen.Width)
	}
	h := c.Domain.Height
	if h == 0 {
		h = float64(c.Screen.Height)
	}
	c.Derived.DomainW = float32(w)
	c.Derived.DomainH = float32(h)

	if c.Physics.StepsPerUpdate < 1 {
		c.Physics.StepsPerUpdate = 1
	}

	c.Derived.Params = fluid.Params{
		Gravity:            mgl32.Vec2{float32(c.Fluid.GravityX), float32(c.Fluid.GravityY)},
		Viscosity:          float32(c.Fluid.Viscosity),
		GasConstant:        float32(c.Fluid.GasConstant),
		RestDensity:        float32(c.Fluid.RestDensity),
		SmoothingRadius:    float32(c.Fluid.SmoothingRadius),
		DampingCoefficient: float32(c.Fluid.Damping),
	}
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height))
	}
	if c.Domain.Width < 0 || c.Domain.Height < 0 {
		errs = append(errs, fmt.Errorf("domain size %vx%v must not be negative", c.Domain.Width, c.Domain.Height))
	}
	if c.Particles.Count < 0 {
		errs = append(errs, fmt.Errorf("particles.count %d: %w", c.Particles.Count, fluid.ErrInvalidParticleCount))
	}
	if c.Particles.Min < 0 || c.Particles.Max < c.Particles.Min {
		errs = append(errs, fmt.Errorf("particles range [%d, %d] is invalid", c.Particles.Min, c.Particles.Max))
	}
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt %v: %w", c.Physics.DT, fluid.ErrInvalidTimeStep))
	}
	if c.Physics.DTMin <= 0 || c.Physics.DTMax < c.Physics.DTMin {
		errs = append(errs, fmt.Errorf("physics dt range [%v, %v] is invalid", c.Physics.DTMin, c.Physics.DTMax))
	}
	if err := c.Derived.Params.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fluid: %w", err))
	}
	if c.Telemetry.StatsWindow <= 0 {
		errs = append(errs, fmt.Errorf("telemetry.stats_window %v must be positive", c.Telemetry.StatsWindow))
	}
	if c.Server.BroadcastHz <= 0 {
		errs = append(errs, fmt.Errorf("server.broadcast_hz %v must be positive", c.Server.BroadcastHz))
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
