// Package main provides CMA-ES optimization for finding fluid parameters
// that integrate stably and settle near rest density.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sph/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	simSeconds := flag.Float64("sim-seconds", 5, "Simulated seconds per run")
	maxSteps := flag.Int("max-steps", 20000, "Step cap per run")
	particles := flag.Int("particles", 200, "Particles per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds, *particles, *simSeconds, *maxSteps)

	dim := params.Dim()
	initX := params.Normalize(params.FromConfig(baseCfg))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	evalLog, err := createEvalLog(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatal(err)
	}
	defer evalLog.Close()

	var (
		evalCount   int
		best        *EvalRecord
		bestParams  []float64
		startTime   = time.Now()
		evaluateRaw = problem.Func
	)
	problem.Func = func(x []float64) float64 {
		fitness := evaluateRaw(x)
		evalCount++

		// Record clamped values, the ones the run actually used
		clamped := params.Clamp(params.Denormalize(x))
		rec := newEvalRecord(evalCount, fitness, evaluator.LastQuality(), clamped)
		if best == nil || fitness < best.Fitness {
			best = &rec
			bestParams = clamped
		}
		if err := evalLog.Write(rec); err != nil {
			log.Printf("%v", err)
		}

		elapsed := time.Since(startTime)
		remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))

		state := "unstable"
		if rec.Stable {
			state = "stable"
		}
		fmt.Printf("Eval %d/%d: %s quality=%.3f gas=%.0f visc=%.3f damp=%.2f dt=%.4f (best=%.3f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, state, rec.Quality, rec.GasConstant, rec.Viscosity, rec.Damping, rec.DT,
			best.Fitness, formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, particles: %d, simulated seconds per run: %.1f\n",
		*seeds, *particles, *simSeconds)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	if best != nil {
		fmt.Printf("Best fitness: %.3f (eval %d, quality %.3f)\n", best.Fitness, best.Eval, best.Quality)
	}

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	params.ApplyToConfig(baseCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
