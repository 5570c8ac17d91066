package fluid

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

func benchmarkUpdate(b *testing.B, n int) {
	s, err := New(1, 1, WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		b.Fatal(err)
	}
	if err := s.Initialize(n); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Update(0.0005); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUpdate250(b *testing.B)  { benchmarkUpdate(b, 250) }
func BenchmarkUpdate1000(b *testing.B) { benchmarkUpdate(b, 1000) }

// Position sweep over a flat x,y buffer with the scalar loop
func BenchmarkPositionSweepScalar(b *testing.B) {
	size := 2 * 1000
	pos := make([]float32, size)
	vel := make([]float32, size)
	for i := range pos {
		pos[i] = float32(i) * 0.001
		vel[i] = float32(i%7) * 0.1
	}
	dt := float32(0.01)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for i := range pos {
			pos[i] += vel[i] * dt
		}
	}
}

// Same sweep through blas32
func BenchmarkPositionSweepBLAS(b *testing.B) {
	size := 2 * 1000
	pos := make([]float32, size)
	vel := make([]float32, size)
	for i := range pos {
		pos[i] = float32(i) * 0.001
		vel[i] = float32(i%7) * 0.1
	}
	dt := float32(0.01)

	vPos := blas32.Vector{N: size, Inc: 1, Data: pos}
	vVel := blas32.Vector{N: size, Inc: 1, Data: vel}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blas32.Axpy(dt, vVel, vPos) // pos += dt*vel
	}
}
