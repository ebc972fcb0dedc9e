package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/jsphweid/pianoscribe/chord"
	"github.com/jsphweid/pianoscribe/midi"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/spf13/cobra"
)

var inspectFlags struct {
	pipelineFlags
	from float64
	to   float64
}

func init() {
	inspectFlags.register(inspectCmd.Flags())
	inspectCmd.Flags().Float64Var(&inspectFlags.from, "from", 0, "first onset to show, in seconds")
	inspectCmd.Flags().Float64Var(&inspectFlags.to, "to", math.Inf(1), "show onsets before this, in seconds")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Prints the decoded notes and chords of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.OutOrStdout(), args[0])
	},
}

func inspect(out io.Writer, path string) error {
	opts, err := inspectFlags.options()
	if err != nil {
		return err
	}
	roll, _, err := midi.Load(path, inspectFlags.decodeOptions())
	if err != nil {
		return err
	}
	window := roll.Window(inspectFlags.from, inspectFlags.to)

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("notes (%d of %d)", window.Len(), roll.Len())))
	for _, n := range window.Notes() {
		fmt.Fprintln(out, n)
	}

	d, err := chord.New(opts.Chord)
	if err != nil {
		return err
	}
	chords := d.Detect(window)
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("chords (%d)", len(chords))))
	for _, c := range chords {
		name := chord.Name(c)
		if name == "" {
			name = chord.IdentifyType(c)
		}
		fmt.Fprintf(out, "%8.3fs  %-20s %s\n", c.Start(), pitchNames(c.Pitches()), dimStyle.Render(name))
	}
	return nil
}

func pitchNames(pitches model.Pitches) string {
	var res string
	for i, p := range pitches {
		if i > 0 {
			res += " "
		}
		res += model.PitchName(p)
	}
	return res
}
