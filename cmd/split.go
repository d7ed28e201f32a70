package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/config"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/worker"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Re-segment a cut manifest into bounded-duration sub-segments",
	Long: `Split windows the overlapping utterances of each cut into sub-segments of
at most --max-len seconds. Utterances crossing a window boundary are trimmed
at word-exact positions using their word-level alignment, cross-speaker
overlap context is carried into the following segment, and each output cut
records per-speaker "continues in next segment" flags.`,
	RunE: runSplit,
}

var (
	splitInput   string
	splitOutput  string
	splitMaxLen  float64
	splitNumJobs int
	splitConfig  string
)

func init() {
	defaults := config.Default()

	splitCmd.Flags().StringVarP(&splitInput, "input", "i", "", "input cut manifest")
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "", "output cut manifest")
	splitCmd.Flags().Float64Var(&splitMaxLen, "max-len", defaults.MaxLen, "max segment length in seconds")
	splitCmd.Flags().IntVarP(&splitNumJobs, "num-jobs", "j", defaults.NumJobs, "number of parallel jobs")
	splitCmd.Flags().StringVar(&splitConfig, "config", "", "optional TOML config with split tunables")
	splitCmd.MarkFlagRequired("input")
	splitCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if splitConfig != "" {
		loaded, err := config.Load(splitConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	// Explicit flags win over the config file.
	if cmd.Flags().Changed("max-len") {
		cfg.MaxLen = splitMaxLen
	}
	if cmd.Flags().Changed("num-jobs") {
		cfg.NumJobs = splitNumJobs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := worker.Run(ctx, worker.Options{
		InputPath:  splitInput,
		OutputPath: splitOutput,
		MaxLen:     cfg.MaxLen,
		NumJobs:    cfg.NumJobs,
		Rules:      cfg.Rules(),
	})
	if err != nil {
		return err
	}

	printSplitSummary(summary)

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d cuts failed", len(summary.Failed), summary.CutsIn)
	}
	return nil
}

func printSplitSummary(summary *worker.Summary) {
	if quiet || !isTerminal(os.Stdout) {
		return
	}
	rows := [][]string{
		{"cuts in", strconv.Itoa(summary.CutsIn)},
		{"segments out", strconv.Itoa(summary.SegmentsOut)},
		{"failed cuts", strconv.Itoa(len(summary.Failed))},
	}
	fmt.Println(renderTable([]string{"metric", "value"}, rows))
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
