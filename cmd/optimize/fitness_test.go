package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if d := back[i] - raw[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVectorApplyClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	p, dt := pv.Apply(cfg.Derived.Params, []float64{1e9, -1, 0.5, 1})

	if p.GasConstant != 8000 {
		t.Errorf("GasConstant = %v, want 8000", p.GasConstant)
	}
	if p.Viscosity != 0 {
		t.Errorf("Viscosity = %v, want 0", p.Viscosity)
	}
	if dt != 0.05 {
		t.Errorf("dt = %v, want 0.05", dt)
	}
	if p.SmoothingRadius != cfg.Derived.Params.SmoothingRadius {
		t.Error("fixed parameters should come from the base")
	}
}

func TestComputeQualityPrefersRestDensity(t *testing.T) {
	windows := func(ratio float64) []telemetry.WindowStats {
		ws := make([]telemetry.WindowStats, 8)
		for i := range ws {
			ws[i] = telemetry.WindowStats{CompressionRatio: ratio, KineticEnergy: 1, SpeedMax: 1}
		}
		return ws
	}

	atRest := computeQuality(windows(1.0))
	compressed := computeQuality(windows(2.0))
	if atRest <= compressed {
		t.Errorf("quality at rest %v should exceed compressed %v", atRest, compressed)
	}
	if computeQuality(windows(1.0)[:3]) != 0 {
		t.Error("warmup-only runs should score zero")
	}
}

func TestEvaluateDefaultsSurvive(t *testing.T) {
	cfg := config.Defaults()
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, cfg, []int64{1}, 20, 0.2, 1000)

	stable := fe.Evaluate(pv.DefaultVector())
	if stable > -1 {
		t.Errorf("default parameters should survive the run, fitness = %v", stable)
	}
}

func TestEvalLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimize_log.csv")
	l, err := createEvalLog(path)
	if err != nil {
		t.Fatal(err)
	}

	pv := NewParamVector()
	for i := 1; i <= 2; i++ {
		if err := l.Write(newEvalRecord(i, -1.5, 0.5, pv.DefaultVector())); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,quality,stable,gas_constant") {
		t.Errorf("unexpected header %q", lines[0])
	}
}
