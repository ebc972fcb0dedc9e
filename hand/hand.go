// Package hand partitions a roll between the left and right hand staves.
package hand

import (
	"sort"

	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/util"
)

const (
	stretchPenaltyPerOctave = 12.0
	polyphonyPenalty        = 0.3
	rangePenalty            = 0.2
	crossoverPenalty        = 0.1
	// notes moved out of an overloaded hand per cluster
	maxRedistributed = 2
)

type Config struct {
	DefaultSplitPitch uint8
	// semitones
	MaxHandStretch    int
	MaxNotesPerHand   int
	MinRightHandPitch uint8
	MaxLeftHandPitch  uint8
	// seconds between onsets for notes to be played together
	GroupThreshold float64
}

func DefaultConfig() Config {
	return Config{
		DefaultSplitPitch: 60,
		MaxHandStretch:    12,
		MaxNotesPerHand:   5,
		MinRightHandPitch: 48,
		MaxLeftHandPitch:  72,
		GroupThreshold:    0.05,
	}
}

// Assignment records which hand plays a note and how awkward that is,
// from 0 (easy) to 1.
type Assignment struct {
	Note       model.Note
	Hand       model.Hand
	Difficulty float64
}

type Assigner struct {
	config Config
}

func New(config Config) (*Assigner, error) {
	if config.MaxHandStretch < 0 {
		return nil, &model.ConfigurationError{Component: "hand assigner", Field: "max hand stretch", Value: config.MaxHandStretch, Reason: "cannot be negative"}
	}
	if config.MaxNotesPerHand < 1 {
		return nil, &model.ConfigurationError{Component: "hand assigner", Field: "max notes per hand", Value: config.MaxNotesPerHand, Reason: "must be at least 1"}
	}
	if config.GroupThreshold < 0 {
		return nil, &model.ConfigurationError{Component: "hand assigner", Field: "group threshold", Value: config.GroupThreshold, Reason: "cannot be negative"}
	}
	return &Assigner{config: config}, nil
}

// Assign returns the right and left hand rolls. Each input note lands in
// exactly one of them.
func (a *Assigner) Assign(roll *model.PianoRoll) (right, left *model.PianoRoll, err error) {
	if roll.Len() == 0 {
		return roll.Empty(), roll.Empty(), nil
	}

	var r, l []model.Note
	for _, asg := range a.AssignDetailed(roll) {
		if asg.Hand == model.HandRight {
			r = append(r, asg.Note)
		} else {
			l = append(l, asg.Note)
		}
	}

	if right, err = roll.WithNotes(r); err != nil {
		return nil, nil, err
	}
	if left, err = roll.WithNotes(l); err != nil {
		return nil, nil, err
	}
	return right, left, nil
}

// AssignDetailed returns one assignment per note, cluster by cluster.
func (a *Assigner) AssignDetailed(roll *model.PianoRoll) []Assignment {
	var res []Assignment
	for _, cluster := range a.clusters(roll.Notes()) {
		res = append(res, a.assignCluster(cluster)...)
	}
	return res
}

// clusters groups notes, in onset order, with the first note of the
// current cluster as the reference.
func (a *Assigner) clusters(notes []model.Note) [][]model.Note {
	if len(notes) == 0 {
		return nil
	}
	var res [][]model.Note
	current := []model.Note{notes[0]}
	for _, n := range notes[1:] {
		if n.Start-current[0].Start <= a.config.GroupThreshold {
			current = append(current, n)
			continue
		}
		res = append(res, current)
		current = []model.Note{n}
	}
	return append(res, current)
}

func (a *Assigner) assignCluster(notes []model.Note) []Assignment {
	if len(notes) == 1 {
		return []Assignment{{Note: notes[0], Hand: a.expectedHand(notes[0])}}
	}

	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Pitch < sorted[j].Pitch
	})

	split := a.splitIndex(sorted)
	res := make([]Assignment, 0, len(sorted))
	for i, n := range sorted {
		hand := model.HandRight
		if i < split {
			hand = model.HandLeft
		}
		res = append(res, Assignment{
			Note:       n,
			Hand:       hand,
			Difficulty: a.difficulty(n, hand, sorted),
		})
	}
	return a.rebalance(res)
}

// splitIndex picks the note closest to the split pitch as the lowest
// right hand note, keeping at least one note in the left hand.
func (a *Assigner) splitIndex(sorted []model.Note) int {
	if len(sorted) <= 1 {
		return 0
	}
	split := int(a.config.DefaultSplitPitch)
	best := 0
	bestDist := -1
	for i, n := range sorted {
		dist := util.Abs(int(n.Pitch) - split)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best == 0 {
		best = 1
	}
	return best
}

func (a *Assigner) expectedHand(n model.Note) model.Hand {
	if n.Pitch >= a.config.DefaultSplitPitch {
		return model.HandRight
	}
	return model.HandLeft
}

func (a *Assigner) difficulty(n model.Note, hand model.Hand, cluster []model.Note) float64 {
	var d float64

	var same []model.Note
	for _, o := range cluster {
		if a.expectedHand(o) == hand {
			same = append(same, o)
		}
	}
	if len(same) > 1 {
		lo, hi := same[0].Pitch, same[0].Pitch
		for _, o := range same[1:] {
			lo, hi = util.Min(lo, o.Pitch), util.Max(hi, o.Pitch)
		}
		if stretch := int(hi) - int(lo); stretch > a.config.MaxHandStretch {
			d += float64(stretch-a.config.MaxHandStretch) / stretchPenaltyPerOctave
		}
	}

	if len(same) > a.config.MaxNotesPerHand {
		d += polyphonyPenalty
	}

	switch hand {
	case model.HandRight:
		if n.Pitch < a.config.MinRightHandPitch {
			d += rangePenalty
		}
	case model.HandLeft:
		if n.Pitch > a.config.MaxLeftHandPitch {
			d += rangePenalty
		}
	}

	return util.Min(d, 1)
}

// rebalance moves up to two edge notes out of an overloaded hand. Counts
// are taken once, before any move, so a cluster can stay overloaded.
func (a *Assigner) rebalance(asgs []Assignment) []Assignment {
	var right, left int
	for _, asg := range asgs {
		if asg.Hand == model.HandRight {
			right++
		} else {
			left++
		}
	}
	if right > a.config.MaxNotesPerHand {
		asgs = move(asgs, model.HandRight, model.HandLeft)
	}
	if left > a.config.MaxNotesPerHand {
		asgs = move(asgs, model.HandLeft, model.HandRight)
	}
	return asgs
}

// move hands the lowest notes of the right hand to the left, or the
// highest notes of the left hand to the right.
func move(asgs []Assignment, from, to model.Hand) []Assignment {
	var idx []int
	for i, asg := range asgs {
		if asg.Hand == from {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if to == model.HandRight {
			return asgs[idx[i]].Note.Pitch > asgs[idx[j]].Note.Pitch
		}
		return asgs[idx[i]].Note.Pitch < asgs[idx[j]].Note.Pitch
	})
	if len(idx) > maxRedistributed {
		idx = idx[:maxRedistributed]
	}
	for _, i := range idx {
		asgs[i].Hand = to
		asgs[i].Difficulty = util.Min(asgs[i].Difficulty+crossoverPenalty, 1)
	}
	return asgs
}

// Assign runs a default assigner over the roll.
func Assign(roll *model.PianoRoll) (right, left *model.PianoRoll, err error) {
	a, err := New(DefaultConfig())
	if err != nil {
		return nil, nil, err
	}
	return a.Assign(roll)
}
