package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Pitches = []uint8

// Chord is a view over notes grouped by onset. It is rebuilt by whichever
// stage needs it and is never stored on a PianoRoll.
type Chord struct {
	Notes []Note

	// set by a classifier; zero value means "use the lowest pitch"
	root    uint8
	hasRoot bool
}

func NewChord(notes []Note) Chord {
	cp := make([]Note, len(notes))
	copy(cp, notes)
	return Chord{Notes: cp}
}

func (c Chord) WithRoot(pitch uint8) Chord {
	c.root = pitch
	c.hasRoot = true
	return c
}

func (c Chord) Start() float64 {
	if len(c.Notes) == 0 {
		return 0
	}
	start := c.Notes[0].Start
	for _, n := range c.Notes[1:] {
		if n.Start < start {
			start = n.Start
		}
	}
	return start
}

// Pitches returns the sorted unique pitch set.
func (c Chord) Pitches() Pitches {
	seen := make(map[uint8]bool, len(c.Notes))
	var res Pitches
	for _, n := range c.Notes {
		if !seen[n.Pitch] {
			seen[n.Pitch] = true
			res = append(res, n.Pitch)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}

func (c Chord) Root() (uint8, bool) {
	if c.hasRoot {
		return c.root, true
	}
	pitches := c.Pitches()
	if len(pitches) == 0 {
		return 0, false
	}
	return pitches[0], true
}

// Span is the distance in semitones between the outer voices.
func (c Chord) Span() int {
	pitches := c.Pitches()
	if len(pitches) < 2 {
		return 0
	}
	return int(pitches[len(pitches)-1]) - int(pitches[0])
}

func (c Chord) Len() int {
	return len(c.Notes)
}

func (c Chord) Key() string {
	return CreateChordKey(c.Pitches())
}

func (c Chord) String() string {
	return fmt.Sprintf("Chord(start=%.3fs, pitches=%s)", c.Start(), c.Key())
}

// CreateChordKey names a pitch set by its sorted pitches joined with dashes,
// so the same voicing always gets the same key. The argument is not
// modified.
func CreateChordKey(pitches Pitches) string {
	sorted := append(Pitches(nil), pitches...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, "-")
}
