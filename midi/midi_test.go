package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func rollOf(t *testing.T, tempo float64, notes ...model.Note) *model.PianoRoll {
	roll, err := model.NewPianoRoll(notes, tempo, model.TimeSignature{Numerator: 3, Denominator: 4}, -2)
	require.NoError(t, err)
	return roll
}

func reread(t *testing.T, s *smf.SMF) *smf.SMF {
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	res, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return res
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	right := rollOf(t, 90,
		model.MustNote(72, 0, 0.5, 90),
		model.MustNote(76, 0.5, 1, 80),
		model.MustNote(72, 1, 2, 70),
	)
	left := rollOf(t, 90,
		model.MustNote(48, 0, 1, 60),
		model.MustNote(43, 1, 2, 60),
	)

	s, err := Encode(HandParts(right, left))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 3)

	roll, stats, err := Decode(reread(t, s), DecodeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Notes)
	assert.Equal(t, 3, stats.Tracks)
	assert.Zero(t, stats.StrayNoteOffs)
	assert.Zero(t, stats.Unterminated)
	assert.InDelta(t, 90.0, roll.Tempo(), 1e-3)
	assert.Equal(t, model.TimeSignature{Numerator: 3, Denominator: 4}, roll.TimeSignature())
	assert.Equal(t, -2, roll.KeySignature())

	want, err := model.Merge(right, left)
	require.NoError(t, err)
	got := roll.Notes()
	require.Len(t, got, want.Len())
	for i, n := range want.Notes() {
		assert.Equal(t, n.Pitch, got[i].Pitch)
		assert.Equal(t, n.Velocity, got[i].Velocity)
		assert.InDelta(t, n.Start, got[i].Start, 1e-3)
		assert.InDelta(t, n.End, got[i].End, 1e-3)
	}
}

func TestDecodeSkipsDrumsAndCountsStrays(t *testing.T) {
	var track smf.Track
	track = append(track,
		smf.Event{Message: smf.Message(gomidi.NoteOff(0, 50))},
		smf.Event{Message: smf.Message(gomidi.NoteOn(9, 36, 100))},
		smf.Event{Message: smf.Message(gomidi.NoteOn(0, 60, 100))},
		smf.Event{Delta: 480, Message: smf.Message(gomidi.NoteOff(9, 36))},
		smf.Event{Message: smf.Message(gomidi.NoteOn(0, 60, 0))},
		smf.Event{Message: smf.Message(gomidi.NoteOn(0, 64, 100))},
		smf.Event{Message: smf.Message(gomidi.NoteOn(0, 20, 100))},
		smf.Event{Delta: 480, Message: smf.Message(gomidi.NoteOff(0, 20))},
	)
	track.Close(0)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	require.NoError(t, s.Add(track))

	roll, stats, err := Decode(reread(t, s), DecodeOptions{PianoRangeOnly: true})
	require.NoError(t, err)

	require.Equal(t, 1, roll.Len())
	n := roll.Notes()[0]
	assert.Equal(t, uint8(60), n.Pitch)
	assert.InDelta(t, 0.5, n.End, 1e-6)
	assert.Equal(t, 120.0, roll.Tempo())
	assert.Equal(t, model.CommonTime, roll.TimeSignature())

	assert.Equal(t, 1, stats.StrayNoteOffs)
	assert.Equal(t, 1, stats.Drums)
	assert.Equal(t, 1, stats.OutOfRange)
	assert.Equal(t, 1, stats.Unterminated)
}

func TestWriteFileAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hands.mid")
	right := rollOf(t, 120, model.MustNote(67, 0, 1, 64))
	left := rollOf(t, 120, model.MustNote(43, 0, 1, 64))
	require.NoError(t, WriteFile(path, HandParts(right, left)))

	roll, stats, err := Load(path, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, roll.Len())
	assert.Equal(t, 2, stats.Notes)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.mid"), DecodeOptions{})
	assert.Error(t, err)
}

func TestEncodeRejectsBadParts(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)

	a := rollOf(t, 120, model.MustNote(60, 0, 1, 64))
	b := rollOf(t, 100, model.MustNote(60, 0, 1, 64))
	_, err = Encode(HandParts(a, b))
	assert.Error(t, err)

	_, err = Encode([]Part{{Name: "x", Channel: 16, Roll: a}})
	assert.Error(t, err)
}

func TestKeySignatureMeta(t *testing.T) {
	cases := []struct {
		fifths int
		tonic  uint8
	}{
		{0, 0},
		{3, 9},
		{7, 1},
		{-2, 10},
		{-7, 11},
	}
	for _, c := range cases {
		t.Run(model.PitchClassName(c.tonic), func(t *testing.T) {
			var tonic, num uint8
			var isMajor, isFlat bool
			msg := keySignature(c.fifths)
			require.True(t, msg.GetMetaKeySig(&tonic, &num, &isMajor, &isFlat))
			assert.True(t, isMajor)
			assert.Equal(t, c.fifths, fifths(num, isFlat))
			assert.Equal(t, c.tonic, tonic)
		})
	}
}
