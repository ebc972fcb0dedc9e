// Package quantize snaps note timings onto a rhythmic grid.
package quantize

import (
	"math"
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

type Grid string

const (
	Whole        Grid = "whole"
	Half         Grid = "half"
	Quarter      Grid = "quarter"
	Eighth       Grid = "8th"
	Sixteenth    Grid = "16th"
	ThirtySecond Grid = "32nd"
	Triplet      Grid = "triplet"
)

// grid sizes as fractions of a beat
var gridSizes = map[Grid]float64{
	Whole:        1.0,
	Half:         0.5,
	Quarter:      0.25,
	Eighth:       0.125,
	Sixteenth:    0.0625,
	ThirtySecond: 0.03125,
	Triplet:      1.0 / 12,
}

func Grids() []Grid {
	res := make([]Grid, 0, len(gridSizes))
	for g := range gridSizes {
		res = append(res, g)
	}
	sort.Slice(res, func(i, j int) bool {
		return gridSizes[res[i]] > gridSizes[res[j]]
	})
	return res
}

func ParseGrid(name string) (Grid, error) {
	g := Grid(name)
	if _, ok := gridSizes[g]; !ok {
		return "", &model.ConfigurationError{Component: "quantizer", Field: "grid", Value: name, Reason: "unsupported grid resolution"}
	}
	return g, nil
}

// Fraction is the grid spacing in beats.
func (g Grid) Fraction() float64 {
	return gridSizes[g]
}

type Config struct {
	Grid Grid
	// 0 leaves timings alone, 1 snaps fully
	Strength        float64
	QuantizeOffsets bool
	// in beats
	MinDuration float64
	// 0 is straight, 0.5 is the most swing
	Swing float64
}

func DefaultConfig() Config {
	return Config{
		Grid:            Sixteenth,
		Strength:        1.0,
		QuantizeOffsets: true,
		MinDuration:     0.0625,
		Swing:           0.0,
	}
}

type Quantizer struct {
	config Config
}

func New(config Config) (*Quantizer, error) {
	if _, err := ParseGrid(string(config.Grid)); err != nil {
		return nil, err
	}
	if config.Strength < 0 || config.Strength > 1 || math.IsNaN(config.Strength) {
		return nil, &model.ConstructionError{Field: "strength", Value: config.Strength, Reason: "must be between 0 and 1"}
	}
	if config.Swing < 0 || config.Swing > 0.5 || math.IsNaN(config.Swing) {
		return nil, &model.ConstructionError{Field: "swing", Value: config.Swing, Reason: "must be between 0 and 0.5"}
	}
	if config.MinDuration < 0 {
		return nil, &model.ConstructionError{Field: "min duration", Value: config.MinDuration, Reason: "cannot be negative"}
	}
	return &Quantizer{config: config}, nil
}

func (q *Quantizer) Config() Config {
	return q.config
}

// Quantize returns a new roll with every note pulled toward the grid. Notes
// are handled independently, so two notes may land on the same onset.
func (q *Quantizer) Quantize(roll *model.PianoRoll) (*model.PianoRoll, error) {
	if roll.Len() == 0 {
		return roll, nil
	}

	beat := roll.BeatDuration()
	grid := beat * q.config.Grid.Fraction()

	notes := roll.Notes()
	res := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		qn, err := q.quantizeNote(n, grid, beat)
		if err != nil {
			return nil, err
		}
		res = append(res, qn)
	}
	return roll.WithNotes(res)
}

func (q *Quantizer) quantizeNote(n model.Note, grid, beat float64) (model.Note, error) {
	start := q.quantizeTime(n.Start, grid)

	var end float64
	if q.config.QuantizeOffsets {
		end = q.quantizeTime(n.End, grid)
		minDur := q.config.MinDuration * beat
		if end-start < minDur {
			end = start + minDur
		}
	} else {
		end = start + n.Duration()
	}

	// a zero min duration can still collapse a note onto one grid line
	if end <= start {
		end = start + grid
	}
	return n.WithTimes(start, end)
}

func (q *Quantizer) quantizeTime(t, grid float64) float64 {
	snapped := math.Round(t/grid) * grid
	if q.config.Swing > 0 {
		snapped = q.applySwing(snapped, grid)
	}
	res := t*(1-q.config.Strength) + snapped*q.config.Strength
	return util.Max(0, res)
}

// applySwing delays times sitting on the off position of a two-grid pair.
func (q *Quantizer) applySwing(t, grid float64) float64 {
	pair := grid * 2
	pos := math.Mod(t, pair) / pair
	if pos > 0.4 && pos < 0.6 {
		return t + q.config.Swing*grid
	}
	return t
}

// QuantizeRoll quantizes with default settings for the given grid and strength.
func QuantizeRoll(roll *model.PianoRoll, grid Grid, strength float64) (*model.PianoRoll, error) {
	config := DefaultConfig()
	config.Grid = grid
	config.Strength = strength
	q, err := New(config)
	if err != nil {
		return nil, err
	}
	return q.Quantize(roll)
}
