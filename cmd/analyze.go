package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/pianoscribe/difficulty"
	"github.com/jsphweid/pianoscribe/hand"
	"github.com/jsphweid/pianoscribe/midi"
	"github.com/jsphweid/pianoscribe/model"
	"github.com/jsphweid/pianoscribe/pipeline"
	"github.com/jsphweid/pianoscribe/quantize"
	"github.com/spf13/cobra"
)

var analyzeFlags pipelineFlags

func init() {
	analyzeFlags.register(analyzeCmd.Flags())
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Reports difficulty, timing and hand statistics",
	Long: `Reports how far a file sits from the quantization grid, which difficulty
level it fits, how the hands divide the notes and where voices cross.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd.OutOrStdout(), args[0])
	},
}

func analyze(out io.Writer, path string) error {
	opts, err := analyzeFlags.options()
	if err != nil {
		return err
	}
	roll, decodeStats, err := midi.Load(path, analyzeFlags.decodeOptions())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, headerStyle.Render(path))
	fmt.Fprintln(out, dimStyle.Render(decodeStats.String()))
	fmt.Fprintf(out, "tempo %.1f BPM, %d/%d, key %d, %.2fs\n",
		roll.Tempo(), roll.TimeSignature().Numerator, roll.TimeSignature().Denominator, roll.KeySignature(), roll.Duration())

	q, err := quantize.New(opts.Quantize)
	if err != nil {
		return err
	}
	printTiming(out, q.AnalyzeTiming(roll), opts.Quantize.Grid)

	res, err := pipeline.Run(roll, opts)
	if err != nil {
		return err
	}
	printDifficulty(out, "difficulty", res.Before)
	if res.After != nil {
		printDifficulty(out, "after adjusting to "+res.Target.String(), *res.After)
	}

	a, err := hand.New(opts.Hand)
	if err != nil {
		return err
	}
	stats, err := a.Analyze(res.Final)
	if err != nil {
		return err
	}
	printHands(out, stats, hand.DetectCrossovers(res.Right, res.Left))

	fmt.Fprintln(out, headerStyle.Render("voices"))
	fmt.Fprintf(out, "melody %d, harmony %d, bass %d, chords %d\n", res.Melody.Len(), res.Harmony.Len(), res.Bass.Len(), len(res.Chords))
	for _, c := range res.Crossings {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  %.3fs %s %s below %s %s by %d",
			c.Time, c.Upper, model.PitchName(c.UpperPitch), c.Lower, model.PitchName(c.LowerPitch), c.Amount)))
	}
	return nil
}

func printTiming(out io.Writer, t quantize.TimingStats, grid quantize.Grid) {
	fmt.Fprintln(out, headerStyle.Render("timing against "+string(grid)+" grid"))
	fmt.Fprintf(out, "%d notes, %.1f%% on grid, mean deviation %.1fms, max %.1fms, std %.1fms\n",
		t.NotesAnalyzed, t.PercentOnGrid, t.MeanDeviation*1000, t.MaxDeviation*1000, t.StdDeviation*1000)
}

func printDifficulty(out io.Writer, title string, a difficulty.Analysis) {
	fmt.Fprintln(out, headerStyle.Render(title))
	fmt.Fprintf(out, "level %s: %.2f notes/s, %d simultaneous, %d semitone stretch\n",
		a.Current, a.NotesPerSecond, a.MaxSimultaneous, a.MaxStretch)
	for _, l := range difficulty.Levels {
		line := fmt.Sprintf("  %-12s %d/3", l, a.Scores[l])
		if a.Scores[l] == 3 {
			line = okStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}
	if !a.TempoWithin {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  tempo %.0f is above the %s limit", a.Tempo, a.Current)))
	}
}

func printHands(out io.Writer, s hand.Stats, crossovers []hand.Crossover) {
	fmt.Fprintln(out, headerStyle.Render("hands"))
	fmt.Fprintf(out, "right %d (%.1f%%) %s-%s avg %.1f\n", s.RightNotes, s.RightPercentage,
		model.PitchName(s.RightRange.Low), model.PitchName(s.RightRange.High), s.RightAvgPitch)
	fmt.Fprintf(out, "left  %d (%.1f%%) %s-%s avg %.1f\n", s.LeftNotes, s.LeftPercentage,
		model.PitchName(s.LeftRange.Low), model.PitchName(s.LeftRange.High), s.LeftAvgPitch)
	fmt.Fprintf(out, "average difficulty %.2f\n", s.AvgDifficulty)
	for _, c := range crossovers {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("  %.3fs left %s above right %s", c.Time,
			model.PitchName(c.LeftPitch), model.PitchName(c.RightPitch))))
	}
}
