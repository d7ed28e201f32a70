package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

var supervisionsCmd = &cobra.Command{
	Use:   "supervisions",
	Short: "Extract a supervision manifest from a cut manifest",
	Long: `Supervisions pulls every supervision out of a cut manifest, shifted back
into recording coordinates, so the result can be used on its own (e.g. for
STM export).`,
	RunE: runSupervisions,
}

var (
	supervisionsInput  string
	supervisionsOutput string
)

func init() {
	supervisionsCmd.Flags().StringVarP(&supervisionsInput, "input", "i", "", "input cut manifest")
	supervisionsCmd.Flags().StringVarP(&supervisionsOutput, "output", "o", "", "output supervision manifest")
	supervisionsCmd.MarkFlagRequired("input")
	supervisionsCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(supervisionsCmd)
}

func runSupervisions(cmd *cobra.Command, args []string) error {
	cuts, err := manifest.LoadCuts(supervisionsInput)
	if err != nil {
		return fmt.Errorf("load cuts: %w", err)
	}

	sups := manifest.Decompose(cuts)
	slog.Info("extracted supervisions", "cuts", len(cuts), "supervisions", len(sups))

	if err := manifest.SaveSupervisions(sups, supervisionsOutput); err != nil {
		return fmt.Errorf("save supervisions: %w", err)
	}
	return nil
}
