package terminal

import (
	"github.com/nsf/termbox-go"

	"github.com/pthm-cable/sph/fluid"
)

// ramp orders glyphs from empty to crowded.
var ramp = []rune(" .:-=+*#%@")

// Grid bins a frame's particles into character cells. Row 0 is the top of
// the screen, which is the top of the y-up domain.
type Grid struct {
	Cols, Rows int
	Count      []int
	Density    []float32 // mean density per cell
	MaxCount   int
}

// NewGrid allocates a grid of the given size.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{}
	g.Resize(cols, rows)
	return g
}

// Resize reallocates the cell buffers.
func (g *Grid) Resize(cols, rows int) {
	g.Cols, g.Rows = max(cols, 0), max(rows, 0)
	g.Count = make([]int, g.Cols*g.Rows)
	g.Density = make([]float32, g.Cols*g.Rows)
	g.MaxCount = 0
}

// Bin clears the grid and accumulates the frame's finite particles.
func (g *Grid) Bin(f *fluid.Frame) {
	clear(g.Count)
	clear(g.Density)
	g.MaxCount = 0
	if g.Cols == 0 || g.Rows == 0 || f == nil || !(f.Width > 0) || !(f.Height > 0) {
		return
	}

	for i := range f.Particles {
		p := &f.Particles[i]
		if !p.IsFinite() {
			continue
		}
		col := int(p.Position[0] / f.Width * float32(g.Cols))
		row := g.Rows - 1 - int(p.Position[1]/f.Height*float32(g.Rows))
		col = min(max(col, 0), g.Cols-1)
		row = min(max(row, 0), g.Rows-1)

		idx := row*g.Cols + col
		g.Count[idx]++
		g.Density[idx] += p.Density
		g.MaxCount = max(g.MaxCount, g.Count[idx])
	}

	for i, n := range g.Count {
		if n > 0 {
			g.Density[i] /= float32(n)
		}
	}
}

// Glyph returns the character for a cell, scaled against the fullest cell.
func (g *Grid) Glyph(col, row int) rune {
	n := g.Count[row*g.Cols+col]
	if n == 0 || g.MaxCount == 0 {
		return ramp[0]
	}
	idx := 1 + (n*(len(ramp)-2)+g.MaxCount-1)/g.MaxCount
	return ramp[min(idx, len(ramp)-1)]
}

// Color returns the foreground for a cell, following the blue to cyan to
// white ramp of the graphical renderer.
func (g *Grid) Color(col, row int, restDensity float32) termbox.Attribute {
	d := g.Density[row*g.Cols+col]
	switch {
	case restDensity <= 0 || d < 0.75*restDensity:
		return termbox.ColorBlue
	case d < 1.25*restDensity:
		return termbox.ColorCyan
	default:
		return termbox.ColorWhite
	}
}
