// Package difficulty measures how hard a roll is to play and rewrites it
// toward a target level.
package difficulty

import (
	"math"
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

const (
	densityWindow = 1.0
	// notes shorter than this are treated as ornaments
	ornamentDuration = 0.1
	// the bounded fix-up loop after simplifying
	maxPasses = 16
)

// durations, in beats, that simplified rhythms snap to
var rhythmValues = []float64{0.0625, 0.125, 0.25, 0.5, 1.0}

type Config struct {
	Target Level

	RemoveFastPassages bool
	SimplifyChords     bool
	ReduceStretches    bool
	SimplifyRhythms    bool
	RemoveOrnaments    bool

	AddArpeggios    bool
	EnhanceVoicing  bool
	AddBassMovement bool
}

func DefaultConfig() Config {
	return Config{
		Target:             Intermediate,
		RemoveFastPassages: true,
		SimplifyChords:     true,
		ReduceStretches:    true,
		SimplifyRhythms:    true,
		RemoveOrnaments:    true,
		AddArpeggios:       true,
		EnhanceVoicing:     true,
		AddBassMovement:    true,
	}
}

type Adjuster struct {
	config Config
	params Params
}

func New(config Config) (*Adjuster, error) {
	if !config.Target.Valid() {
		return nil, &model.ConfigurationError{Component: "difficulty adjuster", Field: "target level", Value: int(config.Target), Reason: "unknown difficulty level"}
	}
	return &Adjuster{config: config, params: config.Target.Params()}, nil
}

func (a *Adjuster) Target() Level {
	return a.config.Target
}

// Adjust returns the roll rewritten toward the target level. A roll already
// at the target comes back unchanged.
func (a *Adjuster) Adjust(roll *model.PianoRoll) (*model.PianoRoll, error) {
	current := Analyze(roll).Current
	switch {
	case current == a.config.Target:
		return roll, nil
	case a.config.Target < current:
		return a.Simplify(roll)
	default:
		return a.Complicate(roll)
	}
}

// Simplify thins, narrows and straightens the roll until it fits the target
// level's density, polyphony and stretch limits, as far as the enabled
// options allow.
func (a *Adjuster) Simplify(roll *model.PianoRoll) (*model.PianoRoll, error) {
	notes := roll.Notes()
	beat := roll.BeatDuration()

	if a.config.RemoveFastPassages {
		notes, _ = reduceDensity(notes, a.params.MaxNotesPerSecond)
	}
	if a.config.SimplifyChords {
		notes, _ = thinChords(notes, a.params.MaxSimultaneousNotes)
	}
	if a.config.ReduceStretches {
		notes, _ = reduceStretches(notes, a.params.MaxHandStretch)
	}
	if a.config.SimplifyRhythms {
		notes = simplifyRhythms(notes, beat)
	}
	if a.config.RemoveOrnaments {
		notes = removeOrnaments(notes)
	}

	// removing notes can regroup what is left, so check again until stable
	for i := 0; i < maxPasses; i++ {
		if analyzeNotes(notes, roll.Tempo()).Meets(a.config.Target) {
			break
		}
		var changed, c bool
		if a.config.SimplifyChords {
			notes, c = thinChords(notes, a.params.MaxSimultaneousNotes)
			changed = changed || c
		}
		if a.config.ReduceStretches {
			notes, c = reduceStretches(notes, a.params.MaxHandStretch)
			changed = changed || c
		}
		if a.config.RemoveFastPassages {
			notes, c = enforceDensity(notes, a.params.MaxNotesPerSecond)
			changed = changed || c
		}
		if !changed {
			break
		}
	}

	return roll.WithNotes(notes)
}

// importance ranks notes for keeping: loud, long and outer notes first.
func importance(n model.Note) float64 {
	vel := float64(n.Velocity) / 127
	dur := util.Clamp(n.Duration(), 0, 1)
	extremity := util.Clamp(util.Abs(float64(n.Pitch)-60)/48, 0, 1)
	return 0.4*vel + 0.3*dur + 0.3*extremity
}

// keepTop returns the n most important notes, back in roll order.
func keepTop(notes []model.Note, n int) []model.Note {
	if len(notes) <= n {
		return notes
	}
	idx := make([]int, len(notes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return importance(notes[idx[i]]) > importance(notes[idx[j]])
	})
	idx = idx[:n]
	sort.Ints(idx)
	res := make([]model.Note, 0, n)
	for _, i := range idx {
		res = append(res, notes[i])
	}
	return res
}

// reduceDensity caps the notes starting in every one second window. Each
// onset opens a window, so a burst straddling a second boundary is caught.
func reduceDensity(notes []model.Note, perSecond float64) ([]model.Note, bool) {
	limit := int(math.Floor(perSecond * densityWindow))
	if limit < 1 {
		limit = 1
	}

	res := append([]model.Note(nil), notes...)
	var changed bool
	for i := 0; i < len(res); {
		j := i
		for j < len(res) && res[j].Start < res[i].Start+densityWindow {
			j++
		}
		if j-i <= limit {
			i++
			continue
		}
		// the kept notes may not include res[i], so look at index i again
		kept := keepTop(res[i:j], limit)
		res = append(append(append([]model.Note(nil), res[:i]...), kept...), res[j:]...)
		changed = true
	}
	return res, changed
}

// enforceDensity drops the least important notes until every window and the
// roll as a whole are within the per-second limit.
func enforceDensity(notes []model.Note, perSecond float64) ([]model.Note, bool) {
	notes, changed := reduceDensity(notes, perSecond)
	for len(notes) > 1 && notesPerSecond(notes) > perSecond {
		notes = keepTop(notes, len(notes)-1)
		changed = true
	}
	return notes, changed
}

// thinChords keeps the outer notes of each chord and fills the remaining
// room with its most important inner notes.
func thinChords(notes []model.Note, max int) ([]model.Note, bool) {
	var res []model.Note
	var changed bool
	for _, g := range groups(notes) {
		if len(g) <= max {
			res = append(res, g...)
			continue
		}
		changed = true
		byPitch := sortedByPitch(g)
		if max <= 1 {
			res = append(res, byPitch[len(byPitch)-1])
			continue
		}
		inner := keepTop(byPitch[1:len(byPitch)-1], max-2)
		if max == 2 {
			inner = nil
		}
		res = append(res, byPitch[0], byPitch[len(byPitch)-1])
		res = append(res, inner...)
	}
	model.SortNotes(res)
	return res, changed
}

// reduceStretches narrows chords wider than max semitones to their outer
// voices. Outer voices still too far apart have the top voice folded down
// by octaves, and if that is not enough only the top voice remains.
func reduceStretches(notes []model.Note, max int) ([]model.Note, bool) {
	var res []model.Note
	var changed bool
	for _, g := range groups(notes) {
		c := model.NewChord(g)
		if c.Span() <= max {
			res = append(res, g...)
			continue
		}
		changed = true
		byPitch := sortedByPitch(g)
		low, high := byPitch[0], byPitch[len(byPitch)-1]

		pitch := int(high.Pitch)
		for pitch-12 > int(low.Pitch) {
			pitch -= 12
		}
		if pitch-int(low.Pitch) > max {
			res = append(res, high)
			continue
		}
		folded, err := high.WithPitch(pitch)
		if err != nil {
			res = append(res, high)
			continue
		}
		res = append(res, low, folded)
	}
	model.SortNotes(res)
	return res, changed
}

// simplifyRhythms snaps every duration to the closest plain note value.
func simplifyRhythms(notes []model.Note, beat float64) []model.Note {
	res := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		beats := n.Duration() / beat
		best := rhythmValues[0]
		for _, v := range rhythmValues[1:] {
			if util.Abs(v-beats) < util.Abs(best-beats) {
				best = v
			}
		}
		snapped, err := n.WithTimes(n.Start, n.Start+best*beat)
		if err != nil {
			snapped = n
		}
		res = append(res, snapped)
	}
	return res
}

func removeOrnaments(notes []model.Note) []model.Note {
	var res []model.Note
	for _, n := range notes {
		if n.Duration() >= ornamentDuration {
			res = append(res, n)
		}
	}
	return res
}

func sortedByPitch(notes []model.Note) []model.Note {
	res := make([]model.Note, len(notes))
	copy(res, notes)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Pitch < res[j].Pitch
	})
	return res
}

// Adjust runs an adjuster with default options toward target.
func Adjust(roll *model.PianoRoll, target Level) (*model.PianoRoll, error) {
	config := DefaultConfig()
	config.Target = target
	a, err := New(config)
	if err != nil {
		return nil, err
	}
	return a.Adjust(roll)
}
