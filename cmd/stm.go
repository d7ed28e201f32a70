package cmd

import (
	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/stm"
)

var stmCmd = &cobra.Command{
	Use:   "stm <corpus-root>",
	Short: "Convert supervision manifests to STM transcript files",
	Long: `Stm walks <corpus-root>/manifests/<dataset>/ for supervision manifests and
writes one STM file per manifest, keeping the dataset directory layout. The
output directory defaults to <corpus-root>/stms.`,
	Args: cobra.ExactArgs(1),
	RunE: runStm,
}

var stmOutput string

func init() {
	stmCmd.Flags().StringVarP(&stmOutput, "output", "o", "", "output directory (default <corpus-root>/stms)")

	rootCmd.AddCommand(stmCmd)
}

func runStm(cmd *cobra.Command, args []string) error {
	return stm.ConvertTree(args[0], stmOutput)
}
