package pipeline

import (
	"github.com/jsphweid/pianoscribe/chord"
	"github.com/jsphweid/pianoscribe/model"
)

func chordJSON(c model.Chord) model.ChordJSON {
	var pitches []int
	for _, p := range c.Pitches() {
		pitches = append(pitches, int(p))
	}
	root, _ := c.Root()
	return model.ChordJSON{
		Start:   c.Start(),
		Key:     c.Key(),
		Pitches: pitches,
		Root:    int(root),
		Type:    chord.IdentifyType(c),
		Name:    chord.Name(c),
	}
}

func (r *Result) Response(id string) model.TranscribeResponse {
	chords := make([]model.ChordJSON, 0, len(r.Chords))
	for _, c := range r.Chords {
		chords = append(chords, chordJSON(c))
	}
	res := model.TranscribeResponse{
		ID:        id,
		Right:     model.ToRollJSON(r.Right),
		Left:      model.ToRollJSON(r.Left),
		Melody:    model.ToRollJSON(r.Melody),
		Harmony:   model.ToRollJSON(r.Harmony),
		Bass:      model.ToRollJSON(r.Bass),
		Chords:    chords,
		Before:    r.Before.Report(),
		Crossings: len(r.Crossings),
	}
	if r.After != nil {
		after := r.After.Report()
		res.After = &after
	}
	return res
}

func (r *Result) Report(filename string) model.Report {
	report := model.Report{
		Filename:   filename,
		Level:      r.Before.Current.String(),
		NumNotes:   r.Final.Len(),
		RightNotes: r.Right.Len(),
		LeftNotes:  r.Left.Len(),
		Chords:     len(r.Chords),
		Crossings:  len(r.Crossings),
	}
	if r.Target != nil {
		report.Target = r.Target.String()
	}
	return report
}
