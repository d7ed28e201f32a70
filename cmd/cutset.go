package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

var cutsetCmd = &cobra.Command{
	Use:   "cutset",
	Short: "Build a cut manifest from recordings and supervisions",
	Long: `Cutset joins a recording manifest with a supervision manifest into one
cut per recording. Supervisions referencing unknown recordings are dropped
and those extending past the recording bounds are clamped.`,
	RunE: runCutset,
}

var (
	cutsetRecordings   string
	cutsetSupervisions string
	cutsetOutput       string
)

func init() {
	cutsetCmd.Flags().StringVar(&cutsetRecordings, "recordings", "", "input recording manifest")
	cutsetCmd.Flags().StringVar(&cutsetSupervisions, "supervisions", "", "input supervision manifest")
	cutsetCmd.Flags().StringVarP(&cutsetOutput, "output", "o", "", "output cut manifest")
	cutsetCmd.MarkFlagRequired("recordings")
	cutsetCmd.MarkFlagRequired("supervisions")
	cutsetCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(cutsetCmd)
}

func runCutset(cmd *cobra.Command, args []string) error {
	recordings, err := manifest.LoadRecordings(cutsetRecordings)
	if err != nil {
		return fmt.Errorf("load recordings: %w", err)
	}
	supervisions, err := manifest.LoadSupervisions(cutsetSupervisions)
	if err != nil {
		return fmt.Errorf("load supervisions: %w", err)
	}

	cuts := manifest.FromManifests(recordings, supervisions)
	slog.Info("assembled cuts",
		"recordings", len(recordings),
		"supervisions", len(supervisions),
		"cuts", len(cuts))

	if err := manifest.SaveMonoCuts(cuts, cutsetOutput); err != nil {
		return fmt.Errorf("save cuts: %w", err)
	}
	return nil
}
