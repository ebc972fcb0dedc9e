// Package midi reads Standard MIDI Files into piano rolls and writes hand
// and voice rolls back out.
package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.Errorf("parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing midi file %s", filepath)
	}
	return res, nil
}

// Load reads and decodes a file in one go.
func Load(filepath string, opts DecodeOptions) (*model.PianoRoll, DecodeStats, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, DecodeStats{}, err
	}
	roll, stats, err := Decode(s, opts)
	if err != nil {
		return nil, stats, errors.Wrapf(err, "decoding %s", filepath)
	}
	return roll, stats, nil
}

func (s DecodeStats) String() string {
	return fmt.Sprintf("%d notes from %d tracks (%d drum, %d out of range, %d zero length, %d unterminated, %d stray note offs)",
		s.Notes, s.Tracks, s.Drums, s.OutOfRange, s.ZeroLength, s.Unterminated, s.StrayNoteOffs)
}
