package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pianoscribe",
	Short: "Re-notates MIDI for two-hand piano",
	Long: `pianoscribe turns MIDI performances into a two-hand piano arrangement:
it quantizes onsets, finds chords, splits melody, harmony and bass, assigns
notes to the left and right hand and can rewrite the piece for an easier or
harder difficulty level.`,
	SilenceUsage: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
