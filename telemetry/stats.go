// Package telemetry provides windowed fluid statistics, pass timing and CSV output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean float64
	Std  float64
	Min  float64
	P10  float64
	P50  float64
	P90  float64
	Max  float64
}

// Summarize computes mean, standard deviation, extremes and empirical
// quantiles. Returns the zero Distribution for an empty sample.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Min: sorted[0],
		Max: floats.Max(sorted),
		P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if n == 1 {
		d.Mean = sorted[0]
		return d
	}
	d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	return d
}

// WindowStats holds aggregated statistics for a window of simulated time.
type WindowStats struct {
	WindowStartStep uint64  `csv:"-"`
	WindowEndStep   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Steps           int     `csv:"steps"`
	Reinits         int     `csv:"reinits"`

	Particles int `csv:"particles"`
	NonFinite int `csv:"non_finite"`

	// Density distribution over finite particles at window end
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMin  float64 `csv:"density_min"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	DensityMax  float64 `csv:"density_max"`

	// Mean density over rest density; 1.0 means the fluid sits at rest density
	CompressionRatio float64 `csv:"compression"`

	PressureMean float64 `csv:"pressure_mean"`
	PressureMax  float64 `csv:"pressure_max"`

	KineticEnergy float64 `csv:"kinetic_energy"`
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedMax      float64 `csv:"speed_max"`

	// Center of mass
	CenterX float64 `csv:"center_x"`
	CenterY float64 `csv:"center_y"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartStep),
		slog.Uint64("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("steps", s.Steps),
		slog.Int("reinits", s.Reinits),
		slog.Int("particles", s.Particles),
		slog.Int("non_finite", s.NonFinite),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p10", s.DensityP10),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("compression", s.CompressionRatio),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_max", s.PressureMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("center_x", s.CenterX),
		slog.Float64("center_y", s.CenterY),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
