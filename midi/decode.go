package midi

import (
	"github.com/jsphweid/pianoscribe/model"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	drumChannel = 9

	defaultTempo = 120.0
)

type DecodeOptions struct {
	IncludeDrums bool
	// drop notes outside the 88 keys
	PianoRangeOnly bool
}

type DecodeStats struct {
	Tracks        int
	Notes         int
	Drums         int
	OutOfRange    int
	ZeroLength    int
	Unterminated  int
	StrayNoteOffs int
}

type heldNote struct {
	start    int64
	velocity uint8
}

type noteKey struct {
	channel uint8
	key     uint8
}

// Decode pairs note on and note off events into notes. A key pressed again
// before release stacks, and releases close the oldest press first. The
// first tempo, meter and key signature found become the roll's metadata.
func Decode(s *smf.SMF, opts DecodeOptions) (*model.PianoRoll, DecodeStats, error) {
	stats := DecodeStats{Tracks: len(s.Tracks)}
	var notes []model.Note

	tempo := 0.0
	meter := model.TimeSignature{}
	key, hasKey := 0, false

	for trackNo, events := range s.Tracks {
		held := make(map[noteKey][]heldNote)
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)
			msg := event.Message

			var channel, pitch, velocity uint8
			var bpm float64
			var num, denom, tonic uint8
			var isMajor, isFlat bool
			switch {
			case msg.GetMetaTempo(&bpm):
				if tempo == 0 && bpm > 0 {
					tempo = bpm
				}
			case msg.GetMetaMeter(&num, &denom):
				if meter.Numerator == 0 && num > 0 && denom > 0 {
					meter = model.TimeSignature{Numerator: int(num), Denominator: int(denom)}
				}
			case msg.GetMetaKeySig(&tonic, &num, &isMajor, &isFlat):
				if !hasKey {
					key, hasKey = fifths(num, isFlat), true
				}
			case msg.GetNoteOn(&channel, &pitch, &velocity) && velocity > 0:
				k := noteKey{channel, pitch}
				held[k] = append(held[k], heldNote{start: absTime, velocity: velocity})
			case msg.GetNoteOff(&channel, &pitch, &velocity),
				msg.GetNoteOn(&channel, &pitch, &velocity):
				k := noteKey{channel, pitch}
				stack := held[k]
				if len(stack) == 0 {
					logrus.Warnf("note off for unpressed note: %s ch=%d track=%d", model.PitchName(pitch), channel, trackNo)
					stats.StrayNoteOffs++
					continue
				}
				on := stack[0]
				held[k] = stack[1:]

				if n, ok := makeNote(pitch, channel, on, absTime, opts, &stats); ok {
					notes = append(notes, n)
				}
			}
		}
		for k, stack := range held {
			for range stack {
				logrus.Warnf("missing note off for note: %s ch=%d track=%d", model.PitchName(k.key), k.channel, trackNo)
				stats.Unterminated++
			}
		}
	}

	if tempo == 0 {
		tempo = defaultTempo
	}
	if meter.Numerator == 0 {
		meter = model.CommonTime
	}

	roll, err := model.NewPianoRoll(notes, tempo, meter, key)
	if err != nil {
		return nil, stats, err
	}
	stats.Notes = roll.Len()
	return roll, stats, nil
}

func makeNote(pitch, channel uint8, on heldNote, offMicros int64, opts DecodeOptions, stats *DecodeStats) (model.Note, bool) {
	if channel == drumChannel && !opts.IncludeDrums {
		stats.Drums++
		return model.Note{}, false
	}
	start := float64(on.start) / 1e6
	end := float64(offMicros) / 1e6
	n, err := model.NewNote(int(pitch), start, end, int(on.velocity))
	if err != nil {
		stats.ZeroLength++
		return model.Note{}, false
	}
	if opts.PianoRangeOnly && !n.InPianoRange() {
		stats.OutOfRange++
		return model.Note{}, false
	}
	return n, true
}

// fifths is the signed count of sharps, negative for flats.
func fifths(num uint8, isFlat bool) int {
	if isFlat {
		return -int(num)
	}
	return int(num)
}
