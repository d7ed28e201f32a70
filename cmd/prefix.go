package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

var prefixCmd = &cobra.Command{
	Use:   "prefix",
	Short: "Rename manifest ids and audio source paths",
	Long: `Prefix prepends a corpus prefix to every cut, recording, and supervision
id, and can additionally rewrite the leading part of audio source paths, e.g.
after moving a corpus to different storage.`,
	RunE: runPrefix,
}

var (
	prefixInput      string
	prefixOutput     string
	idPrefix         string
	origSourcePrefix string
	newSourcePrefix  string
)

func init() {
	prefixCmd.Flags().StringVarP(&prefixInput, "input", "i", "", "input cut manifest")
	prefixCmd.Flags().StringVarP(&prefixOutput, "output", "o", "", "output cut manifest")
	prefixCmd.Flags().StringVar(&idPrefix, "prefix", "", "prefix to prepend to all ids")
	prefixCmd.Flags().StringVar(&origSourcePrefix, "orig-source-prefix", "", "audio source path prefix to replace")
	prefixCmd.Flags().StringVar(&newSourcePrefix, "new-source-prefix", "", "replacement audio source path prefix")
	prefixCmd.MarkFlagRequired("input")
	prefixCmd.MarkFlagRequired("output")
	prefixCmd.MarkFlagsRequiredTogether("orig-source-prefix", "new-source-prefix")

	rootCmd.AddCommand(prefixCmd)
}

func runPrefix(cmd *cobra.Command, args []string) error {
	if idPrefix == "" && origSourcePrefix == "" {
		return fmt.Errorf("nothing to do: pass --prefix and/or --orig-source-prefix")
	}

	cuts, err := manifest.LoadCuts(prefixInput)
	if err != nil {
		return fmt.Errorf("load cuts: %w", err)
	}

	for i := range cuts {
		switch {
		case cuts[i].Mono != nil:
			rewriteMono(cuts[i].Mono)
		case cuts[i].Mixed != nil:
			mixed := cuts[i].Mixed
			if idPrefix != "" {
				mixed.ID = idPrefix + "_" + mixed.ID
			}
			for j := range mixed.Tracks {
				rewriteMono(&mixed.Tracks[j].Cut)
			}
		}
	}
	slog.Info("rewrote cuts", "count", len(cuts), "prefix", idPrefix)

	if err := manifest.SaveCuts(cuts, prefixOutput); err != nil {
		return fmt.Errorf("save cuts: %w", err)
	}
	return nil
}

func rewriteMono(cut *manifest.Cut) {
	if idPrefix != "" {
		cut.ID = idPrefix + "_" + cut.ID
		if cut.Recording != nil {
			cut.Recording.ID = idPrefix + "_" + cut.Recording.ID
		}
		for i := range cut.Supervisions {
			cut.Supervisions[i].ID = idPrefix + "_" + cut.Supervisions[i].ID
			if cut.Supervisions[i].RecordingID != "" {
				cut.Supervisions[i].RecordingID = idPrefix + "_" + cut.Supervisions[i].RecordingID
			}
		}
	}
	if origSourcePrefix != "" && cut.Recording != nil {
		for i := range cut.Recording.Sources {
			cut.Recording.Sources[i].Source = strings.ReplaceAll(
				cut.Recording.Sources[i].Source, origSourcePrefix, newSourcePrefix)
		}
	}
}
