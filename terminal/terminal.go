// Package terminal renders live fluid frames as ASCII art with termbox.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/pthm-cable/sph/fluid"
)

// FrameSource provides the most recently published frame.
type FrameSource interface {
	Latest() *fluid.Frame
}

// Viewer draws the latest frame at a fixed rate until Esc, q or Ctrl-C.
type Viewer struct {
	source FrameSource
	period time.Duration
	grid   *Grid
}

// New creates a viewer refreshing fps times per second.
func New(source FrameSource, fps int) *Viewer {
	if fps < 1 {
		fps = 30
	}
	return &Viewer{
		source: source,
		period: time.Second / time.Duration(fps),
		grid:   NewGrid(0, 0),
	}
}

// Run takes over the terminal until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	w, h := termbox.Size()
	v.resize(w, h)

	events := make(chan termbox.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	defer termbox.Interrupt()

	ticker := time.NewTicker(v.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
					return nil
				}
			case termbox.EventResize:
				v.resize(ev.Width, ev.Height)
			case termbox.EventError:
				return fmt.Errorf("terminal event: %w", ev.Err)
			}
		case <-ticker.C:
			if err := v.draw(); err != nil {
				return err
			}
		}
	}
}

// resize keeps one row for the status line.
func (v *Viewer) resize(w, h int) {
	v.grid.Resize(w, h-1)
}

func (v *Viewer) draw() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("clearing terminal: %w", err)
	}

	frame := v.source.Latest()
	if frame == nil {
		drawText(0, 0, "waiting for first frame...", termbox.ColorYellow)
		return termbox.Flush()
	}

	v.grid.Bin(frame)
	for row := 0; row < v.grid.Rows; row++ {
		for col := 0; col < v.grid.Cols; col++ {
			ch := v.grid.Glyph(col, row)
			if ch == ' ' {
				continue
			}
			termbox.SetCell(col, row, ch, v.grid.Color(col, row, frame.Params.RestDensity), termbox.ColorDefault)
		}
	}

	status := fmt.Sprintf(" step %d  t=%.2fs  particles %d  [q] quit", frame.Step, frame.Time, len(frame.Particles))
	drawText(0, v.grid.Rows, status, termbox.ColorGreen)
	return termbox.Flush()
}

func drawText(x, y int, s string, fg termbox.Attribute) {
	for i, r := range []rune(s) {
		termbox.SetCell(x+i, y, r, fg, termbox.ColorDefault)
	}
}
