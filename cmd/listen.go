package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/pianoscribe/chord"
	"github.com/jsphweid/pianoscribe/constants"
	"github.com/jsphweid/pianoscribe/hand"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var listenPort int

func init() {
	listenCmd.Flags().IntVarP(&listenPort, "port", "p", 0, "MIDI input port number")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Names the chords held on a MIDI keyboard",
	Long: `Listens to a MIDI input port and, whenever the held keys settle, prints
the chord they form and how the hands would split it. Needs a binary built
with the rtmidi tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listen(cmd.OutOrStdout(), listenPort)
	},
}

// heldKeys tracks pressed keys between MIDI callbacks.
type heldKeys struct {
	mu      sync.Mutex
	pressed map[uint8]uint8
}

func (h *heldKeys) press(key, vel uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pressed[key] = vel
}

func (h *heldKeys) release(key uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pressed, key)
}

// roll is the held keys as one simultaneous cluster.
func (h *heldKeys) roll() (*model.PianoRoll, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var notes []model.Note
	for key, vel := range h.pressed {
		n, err := model.NewNote(int(key), 0, 1, int(vel))
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return model.NewPianoRoll(notes, 120, model.CommonTime, 0)
}

func describeHeld(out io.Writer, held *heldKeys, assigner *hand.Assigner) {
	roll, err := held.roll()
	if err != nil {
		logrus.WithError(err).Warn("could not read held keys")
		return
	}
	if roll.Len() == 0 {
		return
	}
	c := model.NewChord(roll.Notes())
	name := chord.Name(c)
	if name == "" {
		name = chord.IdentifyType(c)
	}
	right, left, err := assigner.Assign(roll)
	if err != nil {
		logrus.WithError(err).Warn("could not assign hands")
		return
	}
	fmt.Fprintf(out, "%s  %s  %s\n",
		headerStyle.Render(pitchNames(c.Pitches())),
		name,
		dimStyle.Render(fmt.Sprintf("L %s | R %s", rollNames(left), rollNames(right))))
}

func rollNames(roll *model.PianoRoll) string {
	return pitchNames(model.NewChord(roll.Notes()).Pitches())
}

func listen(out io.Writer, port int) error {
	defer midi.CloseDriver()
	in, err := midi.InPort(port)
	if err != nil {
		return errors.Wrapf(err, "can't open MIDI input %d", port)
	}
	stop, err := startListening(out, in)
	if err != nil {
		return err
	}
	defer stop()

	logrus.WithField("port", in.String()).Info("listening, ctrl-c to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}

// startListening names the held chord each time the keys on the port settle.
func startListening(out io.Writer, in drivers.In) (stop func(), err error) {
	assigner, err := hand.New(hand.DefaultConfig())
	if err != nil {
		return nil, err
	}

	held := &heldKeys{pressed: make(map[uint8]uint8)}
	debounced := debounce.New(constants.ListenDebounceMillis * time.Millisecond)
	changed := func() {
		debounced(func() { describeHeld(out, held, assigner) })
	}

	stop, err = midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var bt []byte
		var ch, key, vel uint8
		switch {
		case msg.GetSysEx(&bt):
			logrus.Debugf("got sysex: % X", bt)
		case msg.GetNoteStart(&ch, &key, &vel):
			held.press(key, vel)
			changed()
		case msg.GetNoteEnd(&ch, &key):
			held.release(key)
			changed()
		}
	}, midi.UseSysEx())
	if err != nil {
		return nil, errors.Wrap(err, "listening")
	}
	return stop, nil
}
