package difficulty

import (
	"strings"

	"github.com/jsphweid/pianoscribe/model"
)

type Level int

const (
	Beginner Level = iota
	Easy
	Intermediate
	Advanced
	Expert
)

var Levels = []Level{Beginner, Easy, Intermediate, Advanced, Expert}

var levelNames = map[Level]string{
	Beginner:     "beginner",
	Easy:         "easy",
	Intermediate: "intermediate",
	Advanced:     "advanced",
	Expert:       "expert",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "invalid"
}

func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range Levels {
		if levelNames[l] == name {
			return l, nil
		}
	}
	return 0, &model.ConfigurationError{Component: "difficulty adjuster", Field: "target level", Value: name, Reason: "unknown difficulty level"}
}

// Params are the limits a roll must stay within to be playable at a level.
type Params struct {
	MaxNotesPerSecond    float64
	MaxSimultaneousNotes int
	// semitones
	MaxHandStretch int
	// BPM
	MaxTempo float64
}

var levelParams = map[Level]Params{
	Beginner:     {MaxNotesPerSecond: 4.0, MaxSimultaneousNotes: 2, MaxHandStretch: 5, MaxTempo: 100},
	Easy:         {MaxNotesPerSecond: 6.0, MaxSimultaneousNotes: 3, MaxHandStretch: 7, MaxTempo: 120},
	Intermediate: {MaxNotesPerSecond: 8.0, MaxSimultaneousNotes: 4, MaxHandStretch: 9, MaxTempo: 140},
	Advanced:     {MaxNotesPerSecond: 12.0, MaxSimultaneousNotes: 5, MaxHandStretch: 12, MaxTempo: 180},
	Expert:       {MaxNotesPerSecond: 20.0, MaxSimultaneousNotes: 8, MaxHandStretch: 15, MaxTempo: 240},
}

func (l Level) Params() Params {
	return levelParams[l]
}
