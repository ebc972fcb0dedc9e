package difficulty

import (
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

// semitones above the bass for passing tones
const passingInterval = 7

// Complicate enriches the roll toward a harder level. It only adds notes or
// staggers onsets inside a chord, so nothing gets removed or sped up.
func (a *Adjuster) Complicate(roll *model.PianoRoll) (*model.PianoRoll, error) {
	notes := roll.Notes()
	beat := roll.BeatDuration()

	if a.config.EnhanceVoicing {
		notes = a.enhanceVoicing(notes)
	}
	if a.config.AddBassMovement {
		notes = addBassMovement(notes, beat)
	}
	if a.config.AddArpeggios {
		notes = addArpeggios(notes, beat)
	}
	return roll.WithNotes(notes)
}

// enhanceVoicing doubles the lowest note of each group an octave down when
// the group stays playable at the target level.
func (a *Adjuster) enhanceVoicing(notes []model.Note) []model.Note {
	var res []model.Note
	for _, g := range groups(notes) {
		res = append(res, g...)
		if len(g)+1 > a.params.MaxSimultaneousNotes {
			continue
		}
		byPitch := sortedByPitch(g)
		low, high := byPitch[0], byPitch[len(byPitch)-1]
		pitch := int(low.Pitch) - 12
		if pitch < model.PianoMinPitch || int(high.Pitch)-pitch > a.params.MaxHandStretch {
			continue
		}
		if hasPitch(g, uint8(pitch)) {
			continue
		}
		doubled, err := low.WithPitch(pitch)
		if err != nil {
			continue
		}
		res = append(res, doubled)
	}
	model.SortNotes(res)
	return res
}

// addBassMovement fills gaps of at least a beat between groups with a
// passing tone a fifth above the bass.
func addBassMovement(notes []model.Note, beat float64) []model.Note {
	gs := groups(notes)
	res := append([]model.Note(nil), notes...)
	for i := 0; i+1 < len(gs); i++ {
		cur, next := gs[i], gs[i+1]
		bass := sortedByPitch(cur)[0]
		end := latestEnd(cur)
		gap := next[0].Start - end
		if gap < beat {
			continue
		}
		pitch := int(bass.Pitch) + passingInterval
		if pitch > model.PianoMaxPitch {
			continue
		}
		n, err := model.NewNote(pitch, end, end+util.Min(gap/2, beat), int(bass.Velocity))
		if err != nil {
			continue
		}
		res = append(res, n.WithRole(bass.Role))
	}
	model.SortNotes(res)
	return res
}

// addArpeggios rolls held chords from the bottom up, a sixteenth of a beat
// apart.
func addArpeggios(notes []model.Note, beat float64) []model.Note {
	var res []model.Note
	offset := beat / 16
	for _, g := range groups(notes) {
		if len(g) < 2 || shortest(g) < 2*beat {
			res = append(res, g...)
			continue
		}
		for i, n := range sortedByPitch(g) {
			start := n.Start + float64(i)*offset
			rolled, err := n.WithTimes(start, n.End)
			if err != nil {
				rolled = n
			}
			res = append(res, rolled)
		}
	}
	model.SortNotes(res)
	return res
}

func hasPitch(notes []model.Note, pitch uint8) bool {
	for _, n := range notes {
		if n.Pitch == pitch {
			return true
		}
	}
	return false
}

func latestEnd(notes []model.Note) float64 {
	end := notes[0].End
	for _, n := range notes[1:] {
		end = util.Max(end, n.End)
	}
	return end
}

func shortest(notes []model.Note) float64 {
	d := notes[0].Duration()
	for _, n := range notes[1:] {
		d = util.Min(d, n.Duration())
	}
	return d
}
