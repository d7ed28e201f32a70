package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/mixture"
)

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Generate synthetic multi-speaker mixtures",
	Long: `Mix samples cuts from one or more manifests and overlays them into
synthetic mixed cuts: each mixture picks --num-speakers distinct speakers,
one cut per speaker, and places the cuts with random overlap or up to
--allowed-pause seconds of silence between them.`,
	RunE: runMix,
}

var (
	mixInputs       []string
	mixOutput       string
	mixMaxLen       float64
	mixNumSpeakers  int
	mixNumMixtures  int
	mixAllowedPause float64
	mixSeed         int64
)

func init() {
	mixCmd.Flags().StringArrayVarP(&mixInputs, "input", "i", nil, "input cut manifest (repeatable)")
	mixCmd.Flags().StringVarP(&mixOutput, "output", "o", "", "output cut manifest")
	mixCmd.Flags().Float64Var(&mixMaxLen, "max-len", 30, "max mixture length in seconds")
	mixCmd.Flags().IntVar(&mixNumSpeakers, "num-speakers", 2, "speakers per mixture")
	mixCmd.Flags().IntVar(&mixNumMixtures, "num-mixtures", 1000, "number of mixtures to generate")
	mixCmd.Flags().Float64Var(&mixAllowedPause, "allowed-pause", 2, "max silence between mixed cuts in seconds")
	mixCmd.Flags().Int64Var(&mixSeed, "seed", 0, "random seed")
	mixCmd.MarkFlagRequired("input")
	mixCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(mixCmd)
}

func runMix(cmd *cobra.Command, args []string) error {
	var pool []manifest.Cut
	for _, path := range mixInputs {
		cuts, err := manifest.LoadMonoCuts(path)
		if err != nil {
			return fmt.Errorf("load cuts from %s: %w", path, err)
		}
		pool = append(pool, cuts...)
	}
	slog.Info("loaded mixing pool", "manifests", len(mixInputs), "cuts", len(pool))

	generator := mixture.NewGenerator(mixture.Settings{
		MaxLen:       mixMaxLen,
		NumSpeakers:  mixNumSpeakers,
		NumMixtures:  mixNumMixtures,
		AllowedPause: mixAllowedPause,
		Seed:         mixSeed,
	})
	mixtures, err := generator.Generate(pool)
	if err != nil {
		return err
	}
	slog.Info("generated mixtures", "count", len(mixtures))

	if err := manifest.SaveMixedCuts(mixtures, mixOutput); err != nil {
		return fmt.Errorf("save mixtures: %w", err)
	}
	return nil
}
