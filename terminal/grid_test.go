package terminal

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/nsf/termbox-go"

	"github.com/pthm-cable/sph/fluid"
)

func particleAt(x, y, density float32) fluid.Particle {
	return fluid.Particle{Position: mgl32.Vec2{x, y}, Mass: 1, Density: density}
}

func TestGridBinFlipsY(t *testing.T) {
	g := NewGrid(4, 2)
	g.Bin(&fluid.Frame{
		Width: 4, Height: 2,
		Particles: []fluid.Particle{
			particleAt(0.5, 0.5, 1000), // bottom-left
			particleAt(3.5, 1.5, 1000), // top-right
		},
	})

	tests := []struct {
		col, row, want int
	}{
		{0, 1, 1},
		{3, 0, 1},
		{0, 0, 0},
		{3, 1, 0},
	}
	for _, tt := range tests {
		if got := g.Count[tt.row*g.Cols+tt.col]; got != tt.want {
			t.Errorf("cell (%d,%d) count = %d, want %d", tt.col, tt.row, got, tt.want)
		}
	}
}

func TestGridBinClampsEdges(t *testing.T) {
	g := NewGrid(2, 2)
	g.Bin(&fluid.Frame{
		Width: 1, Height: 1,
		Particles: []fluid.Particle{
			particleAt(1, 1, 1000), // on the upper walls
			particleAt(0, 0, 1000),
		},
	})
	if g.Count[0*2+1] != 1 {
		t.Error("particle on the top-right wall should land in the top-right cell")
	}
	if g.Count[1*2+0] != 1 {
		t.Error("particle at the origin should land in the bottom-left cell")
	}
}

func TestGridSkipsNonFinite(t *testing.T) {
	g := NewGrid(2, 2)
	g.Bin(&fluid.Frame{
		Width: 1, Height: 1,
		Particles: []fluid.Particle{
			particleAt(float32(math.NaN()), 0.5, 1000),
			particleAt(0.2, 0.2, float32(math.Inf(1))),
		},
	})
	if g.MaxCount != 0 {
		t.Errorf("MaxCount = %d, want 0", g.MaxCount)
	}
}

func TestGridGlyphAndColor(t *testing.T) {
	g := NewGrid(2, 1)
	particles := []fluid.Particle{particleAt(0.75, 0.5, 400)}
	for i := 0; i < 9; i++ {
		particles = append(particles, particleAt(0.25, 0.5, 1500))
	}
	g.Bin(&fluid.Frame{Width: 1, Height: 1, Particles: particles})

	if got := g.Glyph(0, 0); got != '@' {
		t.Errorf("fullest cell glyph = %q, want '@'", got)
	}
	if got := g.Glyph(1, 0); got == ' ' || got == '@' {
		t.Errorf("sparse cell glyph = %q, want an intermediate glyph", got)
	}
	if got := g.Color(0, 0, 1000); got != termbox.ColorWhite {
		t.Errorf("dense cell color = %v, want white", got)
	}
	if got := g.Color(1, 0, 1000); got != termbox.ColorBlue {
		t.Errorf("light cell color = %v, want blue", got)
	}
	if math.Abs(float64(g.Density[0]-1500)) > 1e-3 {
		t.Errorf("mean density = %v, want 1500", g.Density[0])
	}
}

func TestGridEmpty(t *testing.T) {
	g := NewGrid(3, 3)
	g.Bin(nil)
	if g.Glyph(1, 1) != ' ' {
		t.Error("empty grid should render blank")
	}

	g.Resize(0, 0)
	g.Bin(&fluid.Frame{Width: 1, Height: 1, Particles: []fluid.Particle{particleAt(0.5, 0.5, 1)}})
	if g.MaxCount != 0 {
		t.Error("zero-size grid should bin nothing")
	}
}
