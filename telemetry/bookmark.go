package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNonFinite      BookmarkType = "non_finite"
	BookmarkEnergySpike    BookmarkType = "energy_spike"
	BookmarkOverCompressed BookmarkType = "over_compressed"
	BookmarkSettled        BookmarkType = "settled"
)

// Thresholds for bookmark detection.
const (
	energySpikeFactor    = 3.0
	energySpikeFloor     = 1e-3
	overCompressionRatio = 1.5
	settledWindows       = 5
	settledMaxCV2        = 0.01 // squared coefficient of variation of kinetic energy
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Step        uint64       `csv:"step"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog. Non-finite onsets log at warn level.
func (b Bookmark) LogBookmark() {
	level := slog.LevelInfo
	if b.Type == BookmarkNonFinite {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"sim_time", b.SimTimeSec,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the fluid's evolution.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// Edge-trigger state
	nonFinite      bool
	overCompressed bool
	settledCount   int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < settledWindows {
		historySize = settledWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Reset clears history and trigger state, used when the particle set is replaced.
func (bd *BookmarkDetector) Reset() {
	*bd = *NewBookmarkDetector(bd.historySize)
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkNonFinite,
		bd.checkEnergySpike,
		bd.checkOverCompressed,
		bd.checkSettled,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) newBookmark(t BookmarkType, stats WindowStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Step:        stats.WindowEndStep,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkNonFinite(stats WindowStats) *Bookmark {
	was := bd.nonFinite
	bd.nonFinite = stats.NonFinite > 0
	if !bd.nonFinite || was {
		return nil
	}
	return bd.newBookmark(BookmarkNonFinite, stats,
		"%d of %d particles have non-finite state", stats.NonFinite, stats.Particles)
}

func (bd *BookmarkDetector) checkEnergySpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.KineticEnergy
	}
	avg := total / float64(len(history))
	if avg < energySpikeFloor {
		return nil
	}

	if stats.KineticEnergy > avg*energySpikeFactor {
		return bd.newBookmark(BookmarkEnergySpike, stats,
			"Kinetic energy %.3g is %.1fx average (%.3g)", stats.KineticEnergy, stats.KineticEnergy/avg, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkOverCompressed(stats WindowStats) *Bookmark {
	was := bd.overCompressed
	bd.overCompressed = stats.CompressionRatio > overCompressionRatio
	if !bd.overCompressed || was {
		return nil
	}
	return bd.newBookmark(BookmarkOverCompressed, stats,
		"Mean density is %.2fx rest density", stats.CompressionRatio)
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.NonFinite > 0 {
		bd.settledCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < settledWindows-1 {
		return nil
	}

	energies := make([]float64, 0, settledWindows)
	for _, h := range history[len(history)-(settledWindows-1):] {
		energies = append(energies, h.KineticEnergy)
	}
	energies = append(energies, stats.KineticEnergy)

	mean, variance := stat.PopMeanVariance(energies, nil)
	steady := mean == 0 || variance/(mean*mean) < settledMaxCV2
	if steady {
		bd.settledCount++
	} else {
		bd.settledCount = 0
	}

	// Trigger exactly once per settled stretch
	if bd.settledCount == settledWindows {
		return bd.newBookmark(BookmarkSettled, stats,
			"Kinetic energy steady at %.3g over %d windows", stats.KineticEnergy, settledWindows)
	}
	return nil
}
