package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/segment"
)

// splitSequential processes cuts one at a time, in manifest order.
func splitSequential(ctx context.Context, splitter *segment.Splitter, cuts []manifest.Cut) ([]cutResult, error) {
	progress := rate.Sometimes{Interval: time.Second}

	results := make([]cutResult, 0, len(cuts))
	for i, cut := range cuts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		segments, err := splitter.Split(cut)
		results = append(results, cutResult{Index: i, Segments: segments, Err: err})

		progress.Do(func() {
			slog.Info("split progress", "done", i+1, "total", len(cuts))
		})
	}
	return results, nil
}
