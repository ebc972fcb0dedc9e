package model

type MidiMetadata struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Release string `json:"release"`
	Year    uint   `json:"year"`
}

// Report is the per-file summary stored after a transcription run.
type Report struct {
	Filename   string
	Level      string
	Target     string
	NumNotes   int
	RightNotes int
	LeftNotes  int
	Chords     int
	Crossings  int
}
