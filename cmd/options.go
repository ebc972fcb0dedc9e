package cmd

import (
	"github.com/jsphweid/pianoscribe/midi"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/pipeline"
	"github.com/spf13/pflag"
)

// pipelineFlags are shared by every command that runs the pipeline.
type pipelineFlags struct {
	grid           string
	strength       float64
	swing          float64
	skipQuantize   bool
	minChordSize   int
	mergeArpeggios bool
	splitPitch     int
	target         string
	includeDrums   bool
	pianoRangeOnly bool
}

func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.grid, "grid", "g", "16th", "quantization grid: whole, half, quarter, 8th, 16th, 32nd or triplet")
	fs.Float64Var(&f.strength, "strength", 1.0, "how far onsets move toward the grid, 0 to 1")
	fs.Float64Var(&f.swing, "swing", 0, "swing ratio applied to off-beats, 0 to 0.5")
	fs.BoolVar(&f.skipQuantize, "no-quantize", false, "keep the original timing")
	fs.IntVar(&f.minChordSize, "min-chord-size", 2, "notes needed to report a chord")
	fs.BoolVar(&f.mergeArpeggios, "merge-arpeggios", false, "fold rolled chords into one")
	fs.IntVar(&f.splitPitch, "split", 60, "pitch dividing the hands")
	fs.StringVarP(&f.target, "target", "t", "", "rewrite for a difficulty level: beginner, easy, intermediate, advanced or expert")
	fs.BoolVar(&f.includeDrums, "drums", false, "keep notes on the drum channel")
	fs.BoolVar(&f.pianoRangeOnly, "piano-range", true, "drop notes outside the 88 keys")
}

func (f *pipelineFlags) options() (pipeline.Options, error) {
	strength := f.strength
	return pipeline.FromRequest(model.TranscribeOptions{
		Grid:           f.grid,
		Strength:       &strength,
		Swing:          f.swing,
		SkipQuantize:   f.skipQuantize,
		MinChordSize:   f.minChordSize,
		MergeArpeggios: f.mergeArpeggios,
		SplitPitch:     f.splitPitch,
		Target:         f.target,
	})
}

func (f *pipelineFlags) decodeOptions() midi.DecodeOptions {
	return midi.DecodeOptions{IncludeDrums: f.includeDrums, PianoRangeOnly: f.pianoRangeOnly}
}
