package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jsphweid/pianoscribe/constants"
	"github.com/jsphweid/pianoscribe/db"
	"github.com/jsphweid/pianoscribe/midi"
	"github.com/jsphweid/pianoscribe/pipeline"
	"github.com/jsphweid/pianoscribe/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var transcribeFlags struct {
	pipelineFlags
	maxNum     int
	voices     bool
	uuidNames  bool
	dbEndpoint string
	dbRegion   string
}

func init() {
	transcribeFlags.register(transcribeCmd.Flags())
	transcribeCmd.Flags().IntVarP(&transcribeFlags.maxNum, "max", "n", 0, "stop after this many files when transcribing a directory")
	transcribeCmd.Flags().BoolVar(&transcribeFlags.voices, "voices", false, "also write melody, harmony and bass tracks")
	transcribeCmd.Flags().BoolVar(&transcribeFlags.uuidNames, "uuid-names", false, "name outputs with random ids instead of the input name")
	transcribeCmd.Flags().StringVar(&transcribeFlags.dbEndpoint, "db", "", "DynamoDB endpoint for metadata lookups and reports")
	transcribeCmd.Flags().StringVar(&transcribeFlags.dbRegion, "db-region", db.DefaultConfig().Region, "DynamoDB region")
	rootCmd.AddCommand(transcribeCmd)
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file or dir> [out dir]",
	Short: "Writes two-hand piano MIDI files",
	Long: `Runs every MIDI file found at the input path through the pipeline and
writes a right hand and left hand track per file to the output directory
(OUTPUT_PATH or ./out by default).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := constants.GetOutputDir()
		if len(args) == 2 {
			outDir = args[1]
		}
		return transcribe(cmd, args[0], outDir)
	},
}

func transcribe(cmd *cobra.Command, in, outDir string) error {
	opts, err := transcribeFlags.options()
	if err != nil {
		return err
	}
	paths, err := util.GatherAllMidiPaths(in, transcribeFlags.maxNum)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.Errorf("no midi files under %s", in)
	}
	if err := util.EnsureDir(outDir); err != nil {
		return err
	}

	var store *db.Store
	if transcribeFlags.dbEndpoint != "" {
		config := db.DefaultConfig()
		config.Endpoint = transcribeFlags.dbEndpoint
		config.Region = transcribeFlags.dbRegion
		if store, err = db.New(config); err != nil {
			return err
		}
		printTitles(cmd, store, paths)
	}

	out := cmd.OutOrStdout()
	var failed int
	for i, path := range paths {
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(paths), path)
		res, err := transcribeFile(path, opts)
		if err != nil {
			// one bad file should not stop a batch
			fmt.Fprintf(out, "  skipped: %v\n", err)
			failed++
			continue
		}

		dest := filepath.Join(outDir, outputName(path))
		parts := midi.HandParts(res.Right, res.Left)
		if transcribeFlags.voices {
			parts = append(parts,
				midi.Part{Name: "Melody", Channel: 2, Roll: res.Melody},
				midi.Part{Name: "Harmony", Channel: 3, Roll: res.Harmony},
				midi.Part{Name: "Bass", Channel: 4, Roll: res.Bass},
			)
		}
		if err := midi.WriteFile(dest, parts); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s: %d right, %d left, %d chords, level %s", dest, res.Right.Len(), res.Left.Len(), len(res.Chords), res.Before.Current)
		if res.After != nil {
			fmt.Fprintf(out, " -> %s", res.After.Current)
		}
		fmt.Fprintln(out)

		if store != nil {
			if err := store.PutReport(res.Report(filepath.Base(path))); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "transcribed %d of %d files\n", len(paths)-failed, len(paths))
	return nil
}

func transcribeFile(path string, opts pipeline.Options) (*pipeline.Result, error) {
	roll, _, err := midi.Load(path, transcribeFlags.decodeOptions())
	if err != nil {
		return nil, err
	}
	return pipeline.Run(roll, opts)
}

func outputName(path string) string {
	if transcribeFlags.uuidNames {
		return uuid.New().String() + ".mid"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".piano.mid"
}

func printTitles(cmd *cobra.Command, store *db.Store, paths []string) {
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	metas, err := store.GetMidiMetadatasBatched(names)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "metadata lookup failed: %v\n", err)
		return
	}
	for _, name := range util.SortedKeys(metas) {
		m := metas[name]
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s by %s (%d)\n", name, m.Title, m.Artist, m.Year)
	}
}
