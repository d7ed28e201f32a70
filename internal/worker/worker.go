// Package worker drives the split pipeline over a whole cut manifest.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/segment"
)

// Options configures one split run.
type Options struct {
	InputPath  string
	OutputPath string
	MaxLen     float64
	NumJobs    int
	Rules      segment.Rules
}

// FailedCut records a cut that could not be split.
type FailedCut struct {
	ID  string
	Err error
}

// Summary reports what one split run did.
type Summary struct {
	CutsIn      int
	SegmentsOut int
	Failed      []FailedCut
}

// cutResult holds one cut's output, keyed by its input position so that
// out-of-order workers can be recombined in manifest order.
type cutResult struct {
	Index    int
	Segments []manifest.Cut
	Err      error
}

// Run loads the input manifest, splits every cut into segments of at most
// MaxLen seconds, and writes the output manifest. A failing cut does not
// abort the batch: it is recorded in the summary and the remaining cuts are
// still processed and saved.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	slog.Info("loading cuts", "input", filepath.Base(opts.InputPath))
	cuts, err := manifest.LoadMonoCuts(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("load cuts: %w", err)
	}

	splitter := segment.NewSplitter(opts.MaxLen, opts.Rules)

	// Punctuation-only alignment entries carry no spoken word and must not
	// reach the alignment cursor.
	for i, cut := range cuts {
		cuts[i] = splitter.Matcher().FilterPunctuationAlignments(cut)
	}

	slog.Info("windowing overlapping segments",
		"cuts", len(cuts), "max_len", opts.MaxLen, "num_jobs", opts.NumJobs)

	var results []cutResult
	if opts.NumJobs > 1 && len(cuts) > 1 {
		results, err = splitConcurrent(ctx, splitter, cuts, opts.NumJobs)
	} else {
		results, err = splitSequential(ctx, splitter, cuts)
	}
	if err != nil {
		return nil, err
	}

	summary := &Summary{CutsIn: len(cuts)}
	var out []manifest.Cut
	for _, res := range results {
		if res.Err != nil {
			summary.Failed = append(summary.Failed, FailedCut{ID: cuts[res.Index].ID, Err: res.Err})
			continue
		}
		out = append(out, res.Segments...)
	}
	summary.SegmentsOut = len(out)

	for _, f := range summary.Failed {
		slog.Error("cut failed", "cut", f.ID, "err", f.Err)
	}

	slog.Info("saving output", "output", filepath.Base(opts.OutputPath), "segments", len(out))
	if err := manifest.SaveMonoCuts(out, opts.OutputPath); err != nil {
		return nil, fmt.Errorf("save cuts: %w", err)
	}
	return summary, nil
}
