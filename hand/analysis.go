package hand

import (
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

type Range struct {
	Low  uint8
	High uint8
}

type Stats struct {
	TotalNotes      int
	RightNotes      int
	LeftNotes       int
	RightPercentage float64
	LeftPercentage  float64
	RightRange      Range
	LeftRange       Range
	RightAvgPitch   float64
	LeftAvgPitch    float64
	// mean assignment difficulty over all notes
	AvgDifficulty float64
}

func (a *Assigner) Analyze(roll *model.PianoRoll) (Stats, error) {
	var stats Stats
	right, left, err := a.Assign(roll)
	if err != nil {
		return stats, err
	}

	stats.TotalNotes = roll.Len()
	stats.RightNotes = right.Len()
	stats.LeftNotes = left.Len()
	if stats.TotalNotes > 0 {
		stats.RightPercentage = float64(stats.RightNotes) / float64(stats.TotalNotes) * 100
		stats.LeftPercentage = float64(stats.LeftNotes) / float64(stats.TotalNotes) * 100
	}
	stats.RightRange.Low, stats.RightRange.High = right.PitchRange()
	stats.LeftRange.Low, stats.LeftRange.High = left.PitchRange()
	stats.RightAvgPitch = avgPitch(right)
	stats.LeftAvgPitch = avgPitch(left)

	var difficulties []float64
	for _, asg := range a.AssignDetailed(roll) {
		difficulties = append(difficulties, asg.Difficulty)
	}
	if len(difficulties) > 0 {
		stats.AvgDifficulty = util.Sum(difficulties) / float64(len(difficulties))
	}
	return stats, nil
}

func avgPitch(roll *model.PianoRoll) float64 {
	if roll.Len() == 0 {
		return 0
	}
	var pitches []int
	for _, n := range roll.Notes() {
		pitches = append(pitches, int(n.Pitch))
	}
	return float64(util.Sum(pitches)) / float64(len(pitches))
}

// Crossover is a moment where the left hand plays above the right.
type Crossover struct {
	Time       float64
	RightPitch uint8
	LeftPitch  uint8
	Amount     int
}

func DetectCrossovers(right, left *model.PianoRoll) []Crossover {
	var res []Crossover
	leftNotes := left.Notes()
	for _, r := range right.Notes() {
		for _, l := range leftNotes {
			if !r.Overlaps(l) || l.Pitch <= r.Pitch {
				continue
			}
			res = append(res, Crossover{
				Time:       r.Start,
				RightPitch: r.Pitch,
				LeftPitch:  l.Pitch,
				Amount:     int(l.Pitch) - int(r.Pitch),
			})
		}
	}
	return res
}
