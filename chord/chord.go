package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

type Config struct {
	// seconds between onsets for notes to count as simultaneous
	SimultaneityThreshold float64
	MinChordSize          int
	AnalyzeTypes          bool
	MergeArpeggios        bool
	ArpeggioThreshold     float64
}

func DefaultConfig() Config {
	return Config{
		SimultaneityThreshold: 0.05,
		MinChordSize:          2,
		AnalyzeTypes:          true,
		MergeArpeggios:        false,
		ArpeggioThreshold:     0.15,
	}
}

type Detector struct {
	config Config
}

func New(config Config) (*Detector, error) {
	if config.SimultaneityThreshold < 0 {
		return nil, &model.ConfigurationError{Component: "chord detector", Field: "simultaneity threshold", Value: config.SimultaneityThreshold, Reason: "cannot be negative"}
	}
	if config.MinChordSize < 1 {
		return nil, &model.ConfigurationError{Component: "chord detector", Field: "min chord size", Value: config.MinChordSize, Reason: "must be at least 1"}
	}
	if config.MergeArpeggios && config.ArpeggioThreshold < 0 {
		return nil, &model.ConfigurationError{Component: "chord detector", Field: "arpeggio threshold", Value: config.ArpeggioThreshold, Reason: "cannot be negative"}
	}
	return &Detector{config: config}, nil
}

type bucket struct {
	key   float64
	notes []model.Note
}

// Group buckets notes by onset. Each note goes to the first bucket, in
// creation order, whose opening onset is within the threshold, so the
// result depends on input order. Buckets come back sorted by that onset
// and single-note buckets are included.
func (d *Detector) Group(roll *model.PianoRoll) [][]model.Note {
	return GroupNotes(roll.Notes(), d.config.SimultaneityThreshold)
}

// GroupNotes is Group over a plain slice, bucketed in the order given.
func GroupNotes(notes []model.Note, threshold float64) [][]model.Note {
	var buckets []*bucket
	for _, n := range notes {
		var found bool
		for _, b := range buckets {
			if util.Abs(n.Start-b.key) <= threshold {
				b.notes = append(b.notes, n)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, &bucket{key: n.Start, notes: []model.Note{n}})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].key < buckets[j].key
	})

	res := make([][]model.Note, 0, len(buckets))
	for _, b := range buckets {
		res = append(res, b.notes)
	}
	return res
}

// Detect finds the chords of a roll with the default config.
func Detect(roll *model.PianoRoll) []model.Chord {
	d, _ := New(DefaultConfig())
	return d.Detect(roll)
}

// Detect returns the chords of the roll in onset order.
func (d *Detector) Detect(roll *model.PianoRoll) []model.Chord {
	if roll.Len() == 0 {
		return nil
	}

	var chords []model.Chord
	for _, group := range d.Group(roll) {
		if len(group) < d.config.MinChordSize {
			continue
		}
		chords = append(chords, d.createChord(group))
	}

	if d.config.MergeArpeggios {
		chords = d.mergeArpeggios(chords)
	}
	return chords
}

func (d *Detector) createChord(notes []model.Note) model.Chord {
	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pitch < sorted[j].Pitch
	})
	c := model.NewChord(sorted)
	if d.config.AnalyzeTypes {
		if root, ok := FindRoot(c); ok {
			c = c.WithRoot(root)
		}
	}
	return c
}

// mergeArpeggios folds each chord starting soon after the previous one into
// a single chord. Runs can chain; once a run merges, every member note,
// the first chord's included, is moved to the start of the run.
func (d *Detector) mergeArpeggios(chords []model.Chord) []model.Chord {
	if len(chords) < 2 {
		return chords
	}

	var res []model.Chord
	var run []model.Chord
	prevStart := chords[0].Start()
	for _, c := range chords {
		start := c.Start()
		if len(run) > 0 && start-prevStart > d.config.ArpeggioThreshold {
			res = append(res, d.closeRun(run))
			run = nil
		}
		run = append(run, c)
		prevStart = start
	}
	return append(res, d.closeRun(run))
}

func (d *Detector) closeRun(run []model.Chord) model.Chord {
	if len(run) == 1 {
		return run[0]
	}
	start := run[0].Start()
	var notes []model.Note
	for _, c := range run {
		for _, n := range c.Notes {
			notes = append(notes, realign(n, start))
		}
	}
	return d.createChord(notes)
}

func realign(n model.Note, start float64) model.Note {
	end := n.End
	if end <= start {
		end = start + n.Duration()
	}
	moved, err := n.WithTimes(start, end)
	if err != nil {
		// start comes from an earlier valid note and end > start
		panic(fmt.Sprintf("could not realign %v: %v", n, err))
	}
	return moved
}

// FindRoot guesses the root as the lowest pitch present.
func FindRoot(c model.Chord) (uint8, bool) {
	pitches := c.Pitches()
	if len(pitches) == 0 {
		return 0, false
	}
	return pitches[0], true
}
