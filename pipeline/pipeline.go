// Package pipeline runs a roll through every transcription stage: quantize,
// optionally adjust difficulty, then detect chords, separate voices and
// assign hands.
package pipeline

import (
	"github.com/jsphweid/pianoscribe/chord"
	"github.com/jsphweid/pianoscribe/difficulty"
	"github.com/jsphweid/pianoscribe/hand"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/quantize"
	"github.com/jsphweid/pianoscribe/voice"
)

type Options struct {
	Quantize     quantize.Config
	SkipQuantize bool
	Chord        chord.Config
	Voice        voice.Config
	Hand         hand.Config
	// nil leaves the difficulty alone
	Target     *difficulty.Level
	Difficulty difficulty.Config
}

func DefaultOptions() Options {
	return Options{
		Quantize:   quantize.DefaultConfig(),
		Chord:      chord.DefaultConfig(),
		Voice:      voice.DefaultConfig(),
		Hand:       hand.DefaultConfig(),
		Difficulty: difficulty.DefaultConfig(),
	}
}

// FromRequest overlays the options of an HTTP request on the defaults.
// Zero values keep the default.
func FromRequest(o model.TranscribeOptions) (Options, error) {
	opts := DefaultOptions()
	if o.Grid != "" {
		grid, err := quantize.ParseGrid(o.Grid)
		if err != nil {
			return opts, err
		}
		opts.Quantize.Grid = grid
	}
	if o.Strength != nil {
		opts.Quantize.Strength = *o.Strength
	}
	opts.Quantize.Swing = o.Swing
	opts.SkipQuantize = o.SkipQuantize
	if o.MinChordSize != 0 {
		opts.Chord.MinChordSize = o.MinChordSize
	}
	opts.Chord.MergeArpeggios = o.MergeArpeggios
	if o.SplitPitch != 0 {
		if o.SplitPitch < 0 || o.SplitPitch > 127 {
			return opts, &model.ConfigurationError{Component: "hand assigner", Field: "split pitch", Value: o.SplitPitch, Reason: "must be a MIDI pitch"}
		}
		opts.Hand.DefaultSplitPitch = uint8(o.SplitPitch)
	}
	if o.Target != "" {
		target, err := difficulty.ParseLevel(o.Target)
		if err != nil {
			return opts, err
		}
		opts.Target = &target
	}
	return opts, nil
}

type Result struct {
	// input after quantizing, before any difficulty change
	Quantized *model.PianoRoll
	// what the remaining stages ran on
	Final *model.PianoRoll

	Chords    []model.Chord
	Melody    *model.PianoRoll
	Harmony   *model.PianoRoll
	Bass      *model.PianoRoll
	Right     *model.PianoRoll
	Left      *model.PianoRoll
	Crossings []voice.Crossing

	Before difficulty.Analysis
	// both nil without a target
	Target *difficulty.Level
	After  *difficulty.Analysis
}

type stages struct {
	quantizer *quantize.Quantizer
	adjuster  *difficulty.Adjuster
	detector  *chord.Detector
	separator *voice.Separator
	assigner  *hand.Assigner
}

func build(opts Options) (*stages, error) {
	var s stages
	var err error
	if !opts.SkipQuantize {
		if s.quantizer, err = quantize.New(opts.Quantize); err != nil {
			return nil, err
		}
	}
	if opts.Target != nil {
		config := opts.Difficulty
		config.Target = *opts.Target
		if s.adjuster, err = difficulty.New(config); err != nil {
			return nil, err
		}
	}
	if s.detector, err = chord.New(opts.Chord); err != nil {
		return nil, err
	}
	if s.separator, err = voice.New(opts.Voice); err != nil {
		return nil, err
	}
	if s.assigner, err = hand.New(opts.Hand); err != nil {
		return nil, err
	}
	return &s, nil
}

// Run validates every stage's options before touching the roll, then runs
// the stages in order. The input roll is never modified.
func Run(roll *model.PianoRoll, opts Options) (*Result, error) {
	s, err := build(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Quantized: roll}
	if s.quantizer != nil {
		if res.Quantized, err = s.quantizer.Quantize(roll); err != nil {
			return nil, err
		}
	}

	res.Before = difficulty.Analyze(res.Quantized)
	res.Final = res.Quantized
	if s.adjuster != nil {
		if res.Final, err = s.adjuster.Adjust(res.Quantized); err != nil {
			return nil, err
		}
		after := difficulty.Analyze(res.Final)
		res.Target = opts.Target
		res.After = &after
	}

	res.Chords = s.detector.Detect(res.Final)
	if res.Melody, res.Harmony, res.Bass, err = s.separator.Separate(res.Final); err != nil {
		return nil, err
	}
	res.Crossings = voice.DetectCrossings(res.Melody, res.Harmony, res.Bass)
	if res.Right, res.Left, err = s.assigner.Assign(res.Final); err != nil {
		return nil, err
	}
	return res, nil
}
