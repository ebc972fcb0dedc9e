package hand

import (
	"testing"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rollOf(t *testing.T, notes ...model.Note) *model.PianoRoll {
	roll, err := model.NewPianoRoll(notes, 120, model.CommonTime, 0)
	require.NoError(t, err)
	return roll
}

func cluster(t *testing.T, pitches ...int) *model.PianoRoll {
	var notes []model.Note
	for _, p := range pitches {
		notes = append(notes, model.MustNote(p, 0, 1, 64))
	}
	return rollOf(t, notes...)
}

func pitchesOf(roll *model.PianoRoll) []uint8 {
	var res []uint8
	for _, n := range roll.Notes() {
		res = append(res, n.Pitch)
	}
	return res
}

func TestSingleNotesSplitAtMiddleC(t *testing.T) {
	roll := rollOf(t,
		model.MustNote(59, 0, 0.5, 64),
		model.MustNote(60, 1, 1.5, 64),
		model.MustNote(40, 2, 2.5, 64),
	)
	right, left, err := Assign(roll)
	require.NoError(t, err)
	assert.Equal(t, []uint8{60}, pitchesOf(right))
	assert.Equal(t, []uint8{59, 40}, pitchesOf(left))
}

func TestClusterSplitKeepsEveryNote(t *testing.T) {
	roll := cluster(t, 48, 55, 60, 67, 72, 79, 84)
	right, left, err := Assign(roll)
	require.NoError(t, err)

	assert.Equal(t, []uint8{48, 55}, pitchesOf(left))
	assert.Equal(t, []uint8{60, 67, 72, 79, 84}, pitchesOf(right))
	assert.Equal(t, roll.Len(), right.Len()+left.Len())
}

func TestClusterSplitNeverEmptiesLeftHand(t *testing.T) {
	right, left, err := Assign(cluster(t, 60, 64, 67))
	require.NoError(t, err)
	assert.Equal(t, []uint8{60}, pitchesOf(left))
	assert.Equal(t, []uint8{64, 67}, pitchesOf(right))
}

func TestOverloadedHandGivesUpTwoNotes(t *testing.T) {
	config := DefaultConfig()
	config.MaxNotesPerHand = 3
	a, err := New(config)
	require.NoError(t, err)

	// split at 60 leaves 48 alone on the left and six notes on the right
	asgs := a.AssignDetailed(cluster(t, 48, 60, 62, 64, 65, 67, 69))
	hands := map[uint8]model.Hand{}
	for _, asg := range asgs {
		hands[asg.Note.Pitch] = asg.Hand
	}
	assert.Equal(t, model.HandLeft, hands[60])
	assert.Equal(t, model.HandLeft, hands[62])
	assert.Equal(t, model.HandRight, hands[64])

	for _, asg := range asgs {
		if asg.Note.Pitch == 60 || asg.Note.Pitch == 62 {
			assert.GreaterOrEqual(t, asg.Difficulty, crossoverPenalty)
		}
	}
}

func TestOverloadedLeftHandGivesUpTopNotes(t *testing.T) {
	config := DefaultConfig()
	config.MaxNotesPerHand = 5
	a, err := New(config)
	require.NoError(t, err)

	// 72 is closest to the split, leaving seven notes in the left hand
	asgs := a.AssignDetailed(cluster(t, 36, 38, 40, 41, 43, 45, 47, 72))
	require.Len(t, asgs, 8)
	for _, asg := range asgs {
		switch asg.Note.Pitch {
		case 45, 47:
			assert.Equal(t, model.HandRight, asg.Hand, "pitch %d", asg.Note.Pitch)
			// seven notes in one hand plus the move
			assert.InDelta(t, polyphonyPenalty+crossoverPenalty, asg.Difficulty, 1e-9)
		case 72:
			assert.Equal(t, model.HandRight, asg.Hand)
			assert.Equal(t, 0.0, asg.Difficulty)
		default:
			assert.Equal(t, model.HandLeft, asg.Hand, "pitch %d", asg.Note.Pitch)
			assert.InDelta(t, polyphonyPenalty, asg.Difficulty, 1e-9)
		}
	}
}

func TestDifficultyPenalties(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	// the right hand spans 60..86, 14 semitones past a 12 semitone stretch
	asgs := a.AssignDetailed(cluster(t, 40, 60, 86))
	for _, asg := range asgs {
		assert.GreaterOrEqual(t, asg.Difficulty, 0.0)
		assert.LessOrEqual(t, asg.Difficulty, 1.0)
		if asg.Hand == model.HandRight {
			assert.Equal(t, 1.0, asg.Difficulty)
		} else {
			assert.Equal(t, 0.0, asg.Difficulty)
		}
	}

	easy := a.AssignDetailed(cluster(t, 48, 64))
	for _, asg := range easy {
		assert.Equal(t, 0.0, asg.Difficulty)
	}
}

func TestAnalyzeAndCrossovers(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	stats, err := a.Analyze(cluster(t, 48, 55, 64, 72))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalNotes)
	assert.Equal(t, 2, stats.RightNotes)
	assert.InDelta(t, 50.0, stats.LeftPercentage, 1e-9)
	assert.Equal(t, Range{Low: 64, High: 72}, stats.RightRange)
	assert.InDelta(t, 51.5, stats.LeftAvgPitch, 1e-9)

	right := rollOf(t, model.MustNote(60, 0, 1, 64))
	left := rollOf(t, model.MustNote(65, 0.5, 1.5, 64), model.MustNote(50, 0, 1, 64))
	crossovers := DetectCrossovers(right, left)
	require.Len(t, crossovers, 1)
	assert.Equal(t, 5, crossovers[0].Amount)
}
