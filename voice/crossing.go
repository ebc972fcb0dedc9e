package voice

import (
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

// Crossing is a moment where a voice that should sit higher sounds below a
// lower voice.
type Crossing struct {
	Time       float64
	Upper      model.VoiceRole
	Lower      model.VoiceRole
	UpperPitch uint8
	LowerPitch uint8
	// semitones the lower voice sits above the upper one
	Amount int
}

// DetectCrossings compares every pair of overlapping notes across voices.
// It only reports; nothing is reassigned.
func DetectCrossings(melody, harmony, bass *model.PianoRoll) []Crossing {
	pairs := []struct {
		upper, lower *model.PianoRoll
		u, l         model.VoiceRole
	}{
		{melody, harmony, model.RoleMelody, model.RoleHarmony},
		{melody, bass, model.RoleMelody, model.RoleBass},
		{harmony, bass, model.RoleHarmony, model.RoleBass},
	}

	var res []Crossing
	for _, p := range pairs {
		lowerNotes := p.lower.Notes()
		for _, u := range p.upper.Notes() {
			for _, l := range lowerNotes {
				if l.Start >= u.End {
					break
				}
				if !u.Overlaps(l) || l.Pitch <= u.Pitch {
					continue
				}
				res = append(res, Crossing{
					Time:       util.Max(u.Start, l.Start),
					Upper:      p.u,
					Lower:      p.l,
					UpperPitch: u.Pitch,
					LowerPitch: l.Pitch,
					Amount:     int(l.Pitch) - int(u.Pitch),
				})
			}
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Time < res[j].Time
	})
	return res
}
