package difficulty

import (
	"github.com/jsphweid/pianoscribe/chord"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

// seconds between onsets for notes to be measured as one chord
const simultaneityThreshold = 0.05

type Analysis struct {
	NotesPerSecond  float64
	MaxSimultaneous int
	MaxStretch      int
	Tempo           float64
	Scores          map[Level]int
	Current         Level
	// whether the tempo is within the current level's limit
	TempoWithin bool
}

// Meets reports whether the measured values fit the level's limits. Tempo
// is not considered.
func (a Analysis) Meets(l Level) bool {
	return a.score(l.Params()) == 3
}

func (a Analysis) score(p Params) int {
	var s int
	if a.NotesPerSecond <= p.MaxNotesPerSecond {
		s++
	}
	if a.MaxSimultaneous <= p.MaxSimultaneousNotes {
		s++
	}
	if a.MaxStretch <= p.MaxHandStretch {
		s++
	}
	return s
}

// groups buckets notes the way the chord detector does. notes must be in
// roll order.
func groups(notes []model.Note) [][]model.Note {
	return chord.GroupNotes(notes, simultaneityThreshold)
}

// notesPerSecond divides by at least one second so a lone chord does not
// read as a fast passage.
func notesPerSecond(notes []model.Note) float64 {
	if len(notes) == 0 {
		return 0
	}
	first, last := notes[0].Start, notes[0].End
	for _, n := range notes {
		first, last = util.Min(first, n.Start), util.Max(last, n.End)
	}
	return float64(len(notes)) / util.Max(last-first, 1)
}

// Analyze scores the roll against every level and picks the best fit. On a
// tie the lowest level wins.
func Analyze(roll *model.PianoRoll) Analysis {
	return analyzeNotes(roll.Notes(), roll.Tempo())
}

func analyzeNotes(notes []model.Note, tempo float64) Analysis {
	a := Analysis{
		Tempo:          tempo,
		NotesPerSecond: notesPerSecond(notes),
		Scores:         make(map[Level]int, len(Levels)),
	}
	for _, g := range groups(notes) {
		c := model.NewChord(g)
		if c.Len() > a.MaxSimultaneous {
			a.MaxSimultaneous = c.Len()
		}
		if span := c.Span(); span > a.MaxStretch {
			a.MaxStretch = span
		}
	}

	best := -1
	for _, l := range Levels {
		s := a.score(l.Params())
		a.Scores[l] = s
		if s > best {
			best = s
			a.Current = l
		}
	}
	a.TempoWithin = a.Tempo <= a.Current.Params().MaxTempo
	return a
}

func (a Analysis) Report() model.DifficultyReport {
	scores := make(map[string]int, len(a.Scores))
	for l, s := range a.Scores {
		scores[l.String()] = s
	}
	return model.DifficultyReport{
		Level:           a.Current.String(),
		NotesPerSecond:  a.NotesPerSecond,
		MaxSimultaneous: a.MaxSimultaneous,
		MaxStretch:      a.MaxStretch,
		Scores:          scores,
	}
}
