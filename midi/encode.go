package midi

import (
	"bytes"
	"math"
	"os"
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960

// Part is one output track.
type Part struct {
	Name    string
	Channel uint8
	Roll    *model.PianoRoll
}

type tickEvent struct {
	tick  int64
	off   bool
	pitch uint8
	vel   uint8
}

// Encode builds a format 1 file: a conductor track carrying the first
// part's tempo, meter and key, then one track per part.
func Encode(parts []Part) (*smf.SMF, error) {
	if len(parts) == 0 {
		return nil, errors.New("nothing to encode")
	}
	first := parts[0].Roll
	for _, p := range parts {
		if p.Channel > 15 {
			return nil, errors.Errorf("part %q: channel %d out of range", p.Name, p.Channel)
		}
		if p.Roll.Tempo() != first.Tempo() {
			return nil, errors.Errorf("part %q: tempo %v differs from %v", p.Name, p.Roll.Tempo(), first.Tempo())
		}
	}

	res := smf.New()
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := res.Add(conductor(first)); err != nil {
		return nil, errors.Wrap(err, "adding conductor track")
	}

	beat := first.BeatDuration()
	for _, p := range parts {
		if err := res.Add(encodePart(p, beat)); err != nil {
			return nil, errors.Wrapf(err, "adding part %q", p.Name)
		}
	}
	return res, nil
}

func conductor(roll *model.PianoRoll) smf.Track {
	ts := roll.TimeSignature()
	var track smf.Track
	track.Add(0, smf.MetaTempo(roll.Tempo()))
	track.Add(0, smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator)))
	track.Add(0, keySignature(roll.KeySignature()))
	track.Close(0)
	return track
}

// keySignature writes a major key with the given signed count of sharps.
func keySignature(fifths int) smf.Message {
	num, isFlat := fifths, false
	if fifths < 0 {
		num, isFlat = -fifths, true
	}
	// the tonic of a major key walks the circle of fifths from C
	tonic := uint8(((7*fifths)%12 + 12) % 12)
	return smf.MetaKey(tonic, true, uint8(num), isFlat)
}

func toTicks(seconds, beat float64) int64 {
	return int64(math.Round(seconds / beat * ticksPerQuarter))
}

func encodePart(p Part, beat float64) smf.Track {
	var events []tickEvent
	for _, n := range p.Roll.Notes() {
		on := toTicks(n.Start, beat)
		off := toTicks(n.End, beat)
		if off <= on {
			off = on + 1
		}
		events = append(events,
			tickEvent{tick: on, pitch: n.Pitch, vel: n.Velocity},
			tickEvent{tick: off, off: true, pitch: n.Pitch},
		)
	}
	// releases before presses on the same tick so repeated keys pair up
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(p.Name))
	var last int64
	for _, e := range events {
		msg := gomidi.NoteOn(p.Channel, e.pitch, velocity(e.vel))
		if e.off {
			msg = gomidi.NoteOff(p.Channel, e.pitch)
		}
		track.Add(uint32(e.tick-last), msg)
		last = e.tick
	}
	track.Close(0)
	return track
}

// a zero velocity note on would read back as a release
func velocity(v uint8) uint8 {
	if v == 0 {
		return 1
	}
	return v
}

// WriteFile encodes parts and writes them to path.
func WriteFile(path string, parts []Part) error {
	s, err := Encode(parts)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "encoding midi")
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "writing %s", path)
}

// HandParts is the usual two staff layout, right hand first.
func HandParts(right, left *model.PianoRoll) []Part {
	return []Part{
		{Name: "Right Hand", Channel: 0, Roll: right},
		{Name: "Left Hand", Channel: 1, Roll: left},
	}
}
