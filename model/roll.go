package model

import (
	"sort"

	"github.com/jsphweid/pianoscribe/util"
)

type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

var CommonTime = TimeSignature{Numerator: 4, Denominator: 4}

// PianoRoll is the snapshot passed between pipeline stages. Its notes are
// kept ordered by start, then pitch. Every transform builds a new roll.
type PianoRoll struct {
	notes         []Note
	tempo         float64
	timeSignature TimeSignature
	keySignature  int
}

func NewPianoRoll(notes []Note, tempo float64, ts TimeSignature, keySignature int) (*PianoRoll, error) {
	if tempo <= 0 {
		return nil, &ConstructionError{Field: "tempo", Value: tempo, Reason: "must be positive"}
	}
	if ts.Numerator <= 0 || ts.Denominator <= 0 {
		return nil, &ConstructionError{Field: "time signature", Value: ts, Reason: "numerator and denominator must be positive"}
	}
	for _, n := range notes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}

	cp := make([]Note, len(notes))
	copy(cp, notes)
	SortNotes(cp)

	return &PianoRoll{
		notes:         cp,
		tempo:         tempo,
		timeSignature: ts,
		keySignature:  keySignature,
	}, nil
}

// SortNotes orders notes by start then pitch, the order every roll holds.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
}

// Notes returns a copy of the roll's notes.
func (p *PianoRoll) Notes() []Note {
	cp := make([]Note, len(p.notes))
	copy(cp, p.notes)
	return cp
}

func (p *PianoRoll) Len() int                     { return len(p.notes) }
func (p *PianoRoll) Tempo() float64               { return p.tempo }
func (p *PianoRoll) TimeSignature() TimeSignature { return p.timeSignature }
func (p *PianoRoll) KeySignature() int            { return p.keySignature }

// BeatDuration is the length of one beat in seconds.
func (p *PianoRoll) BeatDuration() float64 {
	return 60.0 / p.tempo
}

// Duration is the time at which the last note ends.
func (p *PianoRoll) Duration() float64 {
	var end float64
	for _, n := range p.notes {
		end = util.Max(end, n.End)
	}
	return end
}

func (p *PianoRoll) PitchRange() (lo uint8, hi uint8) {
	if len(p.notes) == 0 {
		return 0, 0
	}
	lo, hi = p.notes[0].Pitch, p.notes[0].Pitch
	for _, n := range p.notes[1:] {
		lo, hi = util.Min(lo, n.Pitch), util.Max(hi, n.Pitch)
	}
	return lo, hi
}

// WithNotes builds a sibling roll carrying this roll's tempo, meter and key.
func (p *PianoRoll) WithNotes(notes []Note) (*PianoRoll, error) {
	return NewPianoRoll(notes, p.tempo, p.timeSignature, p.keySignature)
}

// Empty is WithNotes(nil); it cannot fail on a valid roll.
func (p *PianoRoll) Empty() *PianoRoll {
	return &PianoRoll{
		tempo:         p.tempo,
		timeSignature: p.timeSignature,
		keySignature:  p.keySignature,
	}
}

// Window returns the notes whose onset lies in [from, to).
func (p *PianoRoll) Window(from, to float64) *PianoRoll {
	var notes []Note
	for _, n := range p.notes {
		if n.Start >= from && n.Start < to {
			notes = append(notes, n)
		}
	}
	res := p.Empty()
	res.notes = notes
	return res
}

// Merge combines sibling rolls into one, taking metadata from the first.
func Merge(rolls ...*PianoRoll) (*PianoRoll, error) {
	if len(rolls) == 0 {
		return nil, &ConstructionError{Field: "rolls", Value: 0, Reason: "need at least one roll to merge"}
	}
	var notes []Note
	for _, r := range rolls {
		notes = append(notes, r.notes...)
	}
	return rolls[0].WithNotes(notes)
}
