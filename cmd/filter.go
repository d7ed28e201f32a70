package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Drop cuts that reach the maximum length",
	Long:  `Filter keeps only cuts strictly shorter than --max-len seconds.`,
	RunE:  runFilter,
}

var (
	filterInput  string
	filterOutput string
	filterMaxLen float64
)

func init() {
	filterCmd.Flags().StringVarP(&filterInput, "input", "i", "", "input cut manifest")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "output cut manifest")
	filterCmd.Flags().Float64Var(&filterMaxLen, "max-len", 30, "max cut length in seconds")
	filterCmd.MarkFlagRequired("input")
	filterCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cuts, err := manifest.LoadCuts(filterInput)
	if err != nil {
		return fmt.Errorf("load cuts: %w", err)
	}

	kept := make([]manifest.AnyCut, 0, len(cuts))
	for _, cut := range cuts {
		if cut.Duration() < filterMaxLen {
			kept = append(kept, cut)
		}
	}
	slog.Info("filtered cuts", "in", len(cuts), "kept", len(kept), "max_len", filterMaxLen)

	if err := manifest.SaveCuts(kept, filterOutput); err != nil {
		return fmt.Errorf("save cuts: %w", err)
	}
	return nil
}
