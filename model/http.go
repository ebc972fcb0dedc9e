package model

type TranscribeOptions struct {
	Grid           string   `json:"grid,omitempty"`
	Strength       *float64 `json:"strength,omitempty"`
	Swing          float64  `json:"swing,omitempty"`
	SkipQuantize   bool     `json:"skip_quantize,omitempty"`
	MinChordSize   int      `json:"min_chord_size,omitempty"`
	MergeArpeggios bool     `json:"merge_arpeggios,omitempty"`
	SplitPitch     int      `json:"split_pitch,omitempty"`
	Target         string   `json:"target,omitempty"`
}

type TranscribeRequest struct {
	Notes         []Note            `json:"notes"`
	Tempo         float64           `json:"tempo"`
	TimeSignature *TimeSignature    `json:"time_signature,omitempty"`
	KeySignature  int               `json:"key_signature"`
	Options       TranscribeOptions `json:"options"`
}

type RollJSON struct {
	Notes         []Note        `json:"notes"`
	Tempo         float64       `json:"tempo"`
	TimeSignature TimeSignature `json:"time_signature"`
	KeySignature  int           `json:"key_signature"`
}

type ChordJSON struct {
	Start   float64 `json:"start"`
	Key     string  `json:"key"`
	Pitches []int   `json:"pitches"`
	Root    int     `json:"root"`
	Type    string  `json:"type"`
	Name    string  `json:"name"`
}

type DifficultyReport struct {
	Level           string         `json:"level"`
	NotesPerSecond  float64        `json:"notes_per_second"`
	MaxSimultaneous int            `json:"max_simultaneous"`
	MaxStretch      int            `json:"max_stretch"`
	Scores          map[string]int `json:"scores"`
}

type TranscribeResponse struct {
	ID        string            `json:"id"`
	Right     RollJSON          `json:"right"`
	Left      RollJSON          `json:"left"`
	Melody    RollJSON          `json:"melody"`
	Harmony   RollJSON          `json:"harmony"`
	Bass      RollJSON          `json:"bass"`
	Chords    []ChordJSON       `json:"chords"`
	Before    DifficultyReport  `json:"before"`
	After     *DifficultyReport `json:"after,omitempty"`
	Crossings int               `json:"voice_crossings"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

func ToRollJSON(p *PianoRoll) RollJSON {
	notes := p.Notes()
	if notes == nil {
		notes = []Note{}
	}
	return RollJSON{
		Notes:         notes,
		Tempo:         p.Tempo(),
		TimeSignature: p.TimeSignature(),
		KeySignature:  p.KeySignature(),
	}
}

// Roll builds the request's roll. A zero tempo means 120 BPM and a missing
// time signature means 4/4.
func (r TranscribeRequest) Roll() (*PianoRoll, error) {
	tempo := r.Tempo
	if tempo == 0 {
		tempo = 120
	}
	ts := CommonTime
	if r.TimeSignature != nil {
		ts = *r.TimeSignature
	}
	return NewPianoRoll(r.Notes, tempo, ts, r.KeySignature)
}
