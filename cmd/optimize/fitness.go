package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/fluid"
	"github.com/pthm-cable/sph/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	seeds       []int64
	particles   int
	simSeconds  float64 // simulated time per run
	maxSteps    int     // cap for tiny time steps
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, particles int, simSeconds float64, maxSteps int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  baseCfg,
		seeds:       seeds,
		particles:   particles,
		simSeconds:  simSeconds,
		maxSteps:    maxSteps,
		statsWindow: simSeconds / 20,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalSec float64 // simulated time before non-finite state (or the full run)
	windowStats []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until non-finite state,
// the simulated time budget or the step cap.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	p, dt := fe.params.Apply(fe.baseConfig.Derived.Params, x)
	result := &runResult{}

	sim, err := fluid.New(fe.baseConfig.Derived.DomainW, fe.baseConfig.Derived.DomainH,
		fluid.WithRand(rand.New(rand.NewSource(seed))),
		fluid.WithParams(p),
	)
	if err != nil {
		return result
	}
	if err := sim.Initialize(fe.particles); err != nil {
		return result
	}

	collector := telemetry.NewCollector(fe.statsWindow)
	for step := 0; step < fe.maxSteps && sim.Time() < fe.simSeconds; step++ {
		if err := sim.Update(dt); err != nil {
			return result
		}
		collector.RecordStep()

		if sim.HasNonFinite() {
			result.survivalSec = sim.Time()
			return result
		}
		if collector.ShouldFlush(sim.Time()) {
			stats := collector.Flush(sim.Step(), sim.Time(), sim.Particles(), sim.RestDensity())
			result.windowStats = append(result.windowStats, stats)
		}
	}

	result.survivalSec = fe.simSeconds
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalFraction × (1.0 + quality))
// A run that stays finite always beats one that blows up; quality breaks
// ties between stable runs.
func (fe *FitnessEvaluator) computeFitness(r *runResult, quality float64) float64 {
	survival := r.survivalSec / fe.simSeconds
	if survival < 1 {
		return -survival
	}
	return -(1.0 + quality)
}

// Quality component weights.
const (
	qualityWeightCompression = 0.5
	qualityWeightSettling    = 0.3
	qualityWeightSpeed       = 0.2

	qualityWarmupWindows = 3 // skip first N windows while the block collapses
	maxPlausibleSpeed    = 50.0
)

// computeQuality scores a stable run ∈ [0, 1] from window stats: density
// close to rest, kinetic energy that settles, and no runaway particles.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var compressionSum, speedSum float64
	energy := make([]float64, 0, len(valid))
	for _, w := range valid {
		logErr := math.Log(math.Max(w.CompressionRatio, 1e-6))
		compressionSum += math.Exp(-logErr * logErr / 0.05)

		speedSum += math.Exp(-w.SpeedMax / maxPlausibleSpeed)
		energy = append(energy, w.KineticEnergy)
	}
	n := float64(len(valid))

	settlingScore := 0.0
	if mean, std := stat.MeanStdDev(energy, nil); len(energy) >= 2 && mean > 0 {
		cv := std / mean
		settlingScore = math.Exp(-cv * cv)
	}

	quality := qualityWeightCompression*compressionSum/n +
		qualityWeightSettling*settlingScore +
		qualityWeightSpeed*speedSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
