// Package voice splits a roll into melody, harmony and bass streams.
//
// Classification is local to short onset windows. There is no smoothing
// across windows, so voices can cross; DetectCrossings reports where.
package voice

import (
	"sort"

	"github.com/jsphweid/pianoscribe/model"
)

// a window's lowest note stays bass up to this far above BassPitchThreshold
const bassMargin = 12

type Config struct {
	MelodyPitchThreshold uint8
	BassPitchThreshold   uint8
	UseVelocityHints     bool
	MaxMelodyPolyphony   int
	// seconds
	WindowSize float64
}

func DefaultConfig() Config {
	return Config{
		MelodyPitchThreshold: 60,
		BassPitchThreshold:   55,
		UseVelocityHints:     true,
		MaxMelodyPolyphony:   2,
		WindowSize:           0.1,
	}
}

type Separator struct {
	config Config
}

func New(config Config) (*Separator, error) {
	if config.MaxMelodyPolyphony < 1 {
		return nil, &model.ConfigurationError{Component: "voice separator", Field: "max melody polyphony", Value: config.MaxMelodyPolyphony, Reason: "must be at least 1"}
	}
	if config.WindowSize <= 0 {
		return nil, &model.ConfigurationError{Component: "voice separator", Field: "window size", Value: config.WindowSize, Reason: "must be positive"}
	}
	if config.BassPitchThreshold > 127 || config.MelodyPitchThreshold > 127 {
		return nil, &model.ConfigurationError{Component: "voice separator", Field: "pitch threshold", Value: config.MelodyPitchThreshold, Reason: "must be a MIDI pitch"}
	}
	return &Separator{config: config}, nil
}

// Separate returns melody, harmony and bass rolls. Every input note ends up
// in exactly one of them with its Role set.
func (s *Separator) Separate(roll *model.PianoRoll) (melody, harmony, bass *model.PianoRoll, err error) {
	if roll.Len() == 0 {
		return roll.Empty(), roll.Empty(), roll.Empty(), nil
	}

	var m, h, b []model.Note
	for _, window := range s.windows(roll.Notes()) {
		wm, wh, wb := s.classifyWindow(window)
		m = append(m, wm...)
		h = append(h, wh...)
		b = append(b, wb...)
	}

	if melody, err = roll.WithNotes(m); err != nil {
		return nil, nil, nil, err
	}
	if harmony, err = roll.WithNotes(h); err != nil {
		return nil, nil, nil, err
	}
	if bass, err = roll.WithNotes(b); err != nil {
		return nil, nil, nil, err
	}
	return melody, harmony, bass, nil
}

// windows groups notes, already in onset order, into runs starting within
// WindowSize of the note that opened the run.
func (s *Separator) windows(notes []model.Note) [][]model.Note {
	var res [][]model.Note
	current := []model.Note{notes[0]}
	windowStart := notes[0].Start
	for _, n := range notes[1:] {
		if n.Start-windowStart <= s.config.WindowSize {
			current = append(current, n)
			continue
		}
		res = append(res, current)
		current = []model.Note{n}
		windowStart = n.Start
	}
	return append(res, current)
}

func (s *Separator) classifyWindow(notes []model.Note) (melody, harmony, bass []model.Note) {
	if len(notes) == 1 {
		n := notes[0]
		switch {
		case n.Pitch >= s.config.MelodyPitchThreshold:
			return []model.Note{n.WithRole(model.RoleMelody)}, nil, nil
		case n.Pitch <= s.config.BassPitchThreshold:
			return nil, nil, []model.Note{n.WithRole(model.RoleBass)}
		default:
			return nil, []model.Note{n.WithRole(model.RoleHarmony)}, nil
		}
	}

	// indexes into notes, highest pitch first
	order := make([]int, len(notes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return notes[order[i]].Pitch > notes[order[j]].Pitch
	})

	top := s.config.MaxMelodyPolyphony
	if top > len(order) {
		top = len(order)
	}
	candidates := order[:top]
	if s.config.UseVelocityHints {
		candidates = loudest(notes, candidates)
	}

	isMelody := make(map[int]bool, len(candidates))
	for _, i := range candidates {
		isMelody[i] = true
	}

	lowest := order[len(order)-1]
	isBass := !isMelody[lowest] && int(notes[lowest].Pitch) <= int(s.config.BassPitchThreshold)+bassMargin

	for i, n := range notes {
		switch {
		case isMelody[i]:
			melody = append(melody, n.WithRole(model.RoleMelody))
		case i == lowest && isBass:
			bass = append(bass, n.WithRole(model.RoleBass))
		default:
			harmony = append(harmony, n.WithRole(model.RoleHarmony))
		}
	}
	return melody, harmony, bass
}

// loudest keeps the candidates that share the highest velocity.
func loudest(notes []model.Note, candidates []int) []int {
	var max uint8
	for _, i := range candidates {
		if notes[i].Velocity > max {
			max = notes[i].Velocity
		}
	}
	var res []int
	for _, i := range candidates {
		if notes[i].Velocity == max {
			res = append(res, i)
		}
	}
	return res
}

// Separate runs a default separator over the roll.
func Separate(roll *model.PianoRoll) (melody, harmony, bass *model.PianoRoll, err error) {
	s, err := New(DefaultConfig())
	if err != nil {
		return nil, nil, nil, err
	}
	return s.Separate(roll)
}
