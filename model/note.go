package model

import (
	"fmt"
	"math"
)

type VoiceRole uint8

const (
	RoleUnassigned VoiceRole = iota
	RoleMelody
	RoleHarmony
	RoleBass
	RoleUnknown
)

func (r VoiceRole) String() string {
	switch r {
	case RoleMelody:
		return "melody"
	case RoleHarmony:
		return "harmony"
	case RoleBass:
		return "bass"
	case RoleUnknown:
		return "unknown"
	}
	return "unassigned"
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

const (
	PianoMinPitch = 21
	PianoMaxPitch = 108
)

// Note is a single sounding pitch. Fields are exported for reading and for
// JSON; use NewNote or the With* helpers to get a validated value.
type Note struct {
	Pitch    uint8     `json:"pitch"`
	Start    float64   `json:"start"`
	End      float64   `json:"end"`
	Velocity uint8     `json:"velocity"`
	Role     VoiceRole `json:"role"`
}

func NewNote(pitch int, start, end float64, velocity int) (Note, error) {
	if pitch < 0 || pitch > 127 {
		return Note{}, &ConstructionError{Field: "pitch", Value: pitch, Reason: "must be within 0-127"}
	}
	if velocity < 0 || velocity > 127 {
		return Note{}, &ConstructionError{Field: "velocity", Value: velocity, Reason: "must be within 0-127"}
	}
	if !finite(start) {
		return Note{}, &ConstructionError{Field: "start", Value: start, Reason: "must be a finite number"}
	}
	if !finite(end) {
		return Note{}, &ConstructionError{Field: "end", Value: end, Reason: "must be a finite number"}
	}
	if start < 0 {
		return Note{}, &ConstructionError{Field: "start", Value: start, Reason: "cannot be negative"}
	}
	if end <= start {
		return Note{}, &ConstructionError{Field: "end", Value: end, Reason: fmt.Sprintf("must be after start %v", start)}
	}
	return Note{Pitch: uint8(pitch), Start: start, End: end, Velocity: uint8(velocity)}, nil
}

// MustNote is NewNote for literals known to be valid.
func MustNote(pitch int, start, end float64, velocity int) Note {
	n, err := NewNote(pitch, start, end, velocity)
	if err != nil {
		panic(err)
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (n Note) Validate() error {
	if n.Role > RoleUnknown {
		return &ConstructionError{Field: "role", Value: int(n.Role), Reason: "unknown voice role"}
	}
	_, err := NewNote(int(n.Pitch), n.Start, n.End, int(n.Velocity))
	return err
}

func (n Note) Duration() float64 {
	return n.End - n.Start
}

// Name returns the pitch spelled with sharps and octave, 60 -> "C4".
func (n Note) Name() string {
	return PitchName(n.Pitch)
}

func (n Note) InPianoRange() bool {
	return n.Pitch >= PianoMinPitch && n.Pitch <= PianoMaxPitch
}

func (n Note) WithRole(r VoiceRole) Note {
	n.Role = r
	return n
}

func (n Note) WithTimes(start, end float64) (Note, error) {
	res, err := NewNote(int(n.Pitch), start, end, int(n.Velocity))
	if err != nil {
		return Note{}, err
	}
	res.Role = n.Role
	return res, nil
}

func (n Note) WithPitch(pitch int) (Note, error) {
	res, err := NewNote(pitch, n.Start, n.End, int(n.Velocity))
	if err != nil {
		return Note{}, err
	}
	res.Role = n.Role
	return res, nil
}

// Overlaps reports whether both notes sound at some shared instant.
func (n Note) Overlaps(o Note) bool {
	return !(n.End <= o.Start || o.End <= n.Start)
}

func (n Note) String() string {
	return fmt.Sprintf("Note(pitch=%d [%s], start=%.3fs, dur=%.3fs, vel=%d)", n.Pitch, n.Name(), n.Start, n.Duration(), n.Velocity)
}

func PitchName(pitch uint8) string {
	octave := int(pitch)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[pitch%12], octave)
}

// PitchClassName is PitchName without the octave.
func PitchClassName(pitch uint8) string {
	return noteNames[pitch%12]
}
