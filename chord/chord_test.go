package chord

import (
	"fmt"
	"testing"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chordOf(pitches ...int) model.Chord {
	var notes []model.Note
	for _, p := range pitches {
		notes = append(notes, model.MustNote(p, 0, 1, 64))
	}
	return model.NewChord(notes)
}

func rollOf(t *testing.T, notes ...model.Note) *model.PianoRoll {
	roll, err := model.NewPianoRoll(notes, 120, model.CommonTime, 0)
	require.NoError(t, err)
	return roll
}

func newDetector(t *testing.T, config Config) *Detector {
	d, err := New(config)
	require.NoError(t, err)
	return d
}

func TestIdentifyType(t *testing.T) {
	cases := []struct {
		pitches []int
		want    string
	}{
		{[]int{60, 64, 67}, "major"},
		{[]int{60, 63, 67}, "minor"},
		{[]int{60, 63, 66}, "diminished"},
		{[]int{60, 64, 68}, "augmented"},
		{[]int{60, 64, 67, 71}, "major7"},
		{[]int{60, 63, 67, 70}, "minor7"},
		{[]int{60, 64, 67, 70}, "dominant7"},
		{[]int{60, 62, 67}, "sus2"},
		{[]int{60, 65, 67}, "sus4"},
		{[]int{48, 64, 79}, "major"},
		{[]int{64, 67, 72}, "major (inversion)"},
		{[]int{64, 67, 71, 72}, "major7 (inversion)"},
		{[]int{63, 67, 70, 72}, "minor7 (inversion)"},
		{[]int{60, 61, 62}, Unknown},
		{[]int{60}, ""},
		{[]int{60, 72}, Unknown},
	}

	for _, c := range cases {
		name := fmt.Sprintf("%v is %q", c.pitches, c.want)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.want, IdentifyType(chordOf(c.pitches...)))
		})
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "C major", Name(chordOf(60, 64, 67)))
	assert.Equal(t, "A minor", Name(chordOf(57, 60, 64)))
	assert.Equal(t, "", Name(chordOf(60, 61, 62)))
}

func TestGroupIsFirstFit(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	// 0.04 joins the bucket opened at 0, 0.08 is too far from 0 and opens its own
	roll := rollOf(t,
		model.MustNote(60, 0, 1, 64),
		model.MustNote(64, 0.04, 1, 64),
		model.MustNote(67, 0.08, 1, 64),
		model.MustNote(72, 0.12, 1, 64),
	)

	groups := d.Group(roll)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)
	assert.Equal(t, uint8(67), groups[1][0].Pitch)
}

func TestDetectFiltersAndOrders(t *testing.T) {
	d := newDetector(t, DefaultConfig())
	roll := rollOf(t,
		model.MustNote(55, 2, 3, 64),
		model.MustNote(59, 2.01, 3, 64),
		model.MustNote(62, 2.02, 3, 64),
		model.MustNote(72, 1, 2, 64),
		model.MustNote(60, 0, 1, 64),
		model.MustNote(64, 0.01, 1, 64),
		model.MustNote(67, 0.03, 1, 64),
	)

	chords := d.Detect(roll)
	require.Len(t, chords, 2)
	assert.Equal(t, model.Pitches{60, 64, 67}, chords[0].Pitches())
	assert.Equal(t, model.Pitches{55, 59, 62}, chords[1].Pitches())
	assert.LessOrEqual(t, chords[0].Start(), chords[1].Start())
	assert.Equal(t, "major", IdentifyType(chords[1]))

	root, ok := chords[1].Root()
	assert.True(t, ok)
	assert.Equal(t, uint8(55), root)
}

func TestScaleHasNoChords(t *testing.T) {
	var notes []model.Note
	for i, p := range []int{60, 62, 64, 65, 67, 69, 71, 72} {
		start := float64(i) * 0.5
		notes = append(notes, model.MustNote(p, start, start+0.5, 64))
	}
	d := newDetector(t, DefaultConfig())
	roll := rollOf(t, notes...)

	assert.Empty(t, d.Detect(roll))
	assert.Len(t, d.Group(roll), 8)
}

func TestMergeArpeggios(t *testing.T) {
	config := DefaultConfig()
	config.MergeArpeggios = true
	d := newDetector(t, config)

	roll := rollOf(t,
		model.MustNote(48, 0, 1, 64),
		model.MustNote(55, 0, 1, 64),
		model.MustNote(60, 0.1, 1, 64),
		model.MustNote(64, 0.1, 1, 64),
		model.MustNote(67, 0.2, 1, 64),
		model.MustNote(72, 0.2, 1, 64),
		model.MustNote(50, 2, 3, 64),
		model.MustNote(53, 2, 3, 64),
	)

	chords := d.Detect(roll)
	require.Len(t, chords, 2)
	assert.Equal(t, model.Pitches{48, 55, 60, 64, 67, 72}, chords[0].Pitches())
	for _, n := range chords[0].Notes {
		assert.Equal(t, 0.0, n.Start)
	}
	assert.Equal(t, model.Pitches{50, 53}, chords[1].Pitches())

	// the input roll is untouched
	assert.Equal(t, 0.2, roll.Notes()[4].Start)
}

func TestMergeResetsFirstChordMembers(t *testing.T) {
	config := DefaultConfig()
	config.MergeArpeggios = true
	d := newDetector(t, config)

	roll := rollOf(t,
		model.MustNote(60, 0, 1, 64),
		model.MustNote(64, 0.03, 1, 64),
		model.MustNote(67, 0.1, 1, 64),
		model.MustNote(72, 0.12, 1, 64),
	)

	chords := d.Detect(roll)
	require.Len(t, chords, 1)
	assert.Equal(t, model.Pitches{60, 64, 67, 72}, chords[0].Pitches())
	for _, n := range chords[0].Notes {
		assert.Equal(t, 0.0, n.Start, "pitch %d", n.Pitch)
		assert.Equal(t, 1.0, n.End)
	}
}

func TestUnmergedChordKeepsOnsets(t *testing.T) {
	config := DefaultConfig()
	config.MergeArpeggios = true
	d := newDetector(t, config)

	chords := d.Detect(rollOf(t,
		model.MustNote(60, 0, 1, 64),
		model.MustNote(64, 0.03, 1, 64),
		model.MustNote(50, 2, 3, 64),
		model.MustNote(53, 2, 3, 64),
	))
	require.Len(t, chords, 2)
	assert.Equal(t, 0.03, chords[0].Notes[1].Start)
}

func TestDetectWithDefaults(t *testing.T) {
	chords := Detect(rollOf(t,
		model.MustNote(60, 0, 1, 64),
		model.MustNote(64, 0, 1, 64),
		model.MustNote(67, 0, 1, 64),
	))
	require.Len(t, chords, 1)
	assert.Equal(t, "major", IdentifyType(chords[0]))
	root, ok := chords[0].Root()
	assert.True(t, ok)
	assert.Equal(t, uint8(60), root)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{SimultaneityThreshold: -1, MinChordSize: 2})
	assert.Error(t, err)
	_, err = New(Config{SimultaneityThreshold: 0.05, MinChordSize: 0})
	assert.Error(t, err)
}
