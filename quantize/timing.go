package quantize

import (
	"math"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

// notes closer than this to a grid line count as on-grid
const onGridTolerance = 0.001

type TimingStats struct {
	MeanDeviation float64
	MaxDeviation  float64
	StdDeviation  float64
	GridDuration  float64
	NotesAnalyzed int
	PercentOnGrid float64
}

// AnalyzeTiming measures how far onsets sit from the configured grid.
func (q *Quantizer) AnalyzeTiming(roll *model.PianoRoll) TimingStats {
	var stats TimingStats
	if roll.Len() == 0 {
		return stats
	}

	grid := roll.BeatDuration() * q.config.Grid.Fraction()
	stats.GridDuration = grid

	var deviations []float64
	var onGrid int
	for _, n := range roll.Notes() {
		d := util.Abs(n.Start - math.Round(n.Start/grid)*grid)
		deviations = append(deviations, d)
		stats.MaxDeviation = util.Max(stats.MaxDeviation, d)
		if d < onGridTolerance {
			onGrid++
		}
	}

	count := float64(len(deviations))
	stats.NotesAnalyzed = len(deviations)
	stats.MeanDeviation = util.Sum(deviations) / count
	var variance float64
	for _, d := range deviations {
		variance += (d - stats.MeanDeviation) * (d - stats.MeanDeviation)
	}
	stats.StdDeviation = math.Sqrt(variance / count)
	stats.PercentOnGrid = float64(onGrid) / count * 100
	return stats
}
