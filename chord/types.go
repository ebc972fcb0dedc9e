package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/pianoscribe/model"
)

type pattern struct {
	name      string
	intervals []int
}

// checked in this order; the first match wins
var chordTypes = []pattern{
	{"major", []int{0, 4, 7}},
	{"minor", []int{0, 3, 7}},
	{"diminished", []int{0, 3, 6}},
	{"augmented", []int{0, 4, 8}},
	{"major7", []int{0, 4, 7, 11}},
	{"minor7", []int{0, 3, 7, 10}},
	{"dominant7", []int{0, 4, 7, 10}},
	{"sus2", []int{0, 2, 7}},
	{"sus4", []int{0, 5, 7}},
}

const Unknown = "unknown"

func intervalsFromLowest(pitches model.Pitches) []int {
	root := int(pitches[0])
	seen := make(map[int]bool)
	var res []int
	for _, p := range pitches {
		i := (int(p) - root) % 12
		if !seen[i] {
			seen[i] = true
			res = append(res, i)
		}
	}
	sort.Ints(res)
	return res
}

// rotate re-voices a pattern with the note at index r in the bass and
// returns its intervals from that note.
func rotate(intervals []int, r int) []int {
	base := intervals[r]
	res := make([]int, 0, len(intervals))
	for _, i := range intervals {
		res = append(res, ((i-base)%12+12)%12)
	}
	sort.Ints(res)
	return res
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IdentifyType names the chord quality by its interval pattern from the
// lowest note. Inverted voicings are reported as "<type> (inversion)".
// Chords with fewer than two distinct pitches return "".
func IdentifyType(c model.Chord) string {
	pitches := c.Pitches()
	if len(pitches) < 2 {
		return ""
	}
	intervals := intervalsFromLowest(pitches)

	for _, p := range chordTypes {
		if equal(intervals, p.intervals) {
			return p.name
		}
	}

	for _, p := range chordTypes {
		for r := 1; r < len(p.intervals); r++ {
			if equal(intervals, rotate(p.intervals, r)) {
				return p.name + " (inversion)"
			}
		}
	}

	return Unknown
}

// Name returns e.g. "C major" using the chord's root, or "" when the chord
// has no recognizable quality.
func Name(c model.Chord) string {
	t := IdentifyType(c)
	if t == "" || t == Unknown {
		return ""
	}
	root, ok := c.Root()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %s", model.PitchClassName(root), t)
}
