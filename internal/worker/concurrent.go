package worker

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/segment"
)

// splitConcurrent processes cuts with bounded parallelism. Cuts are
// independent units, so the only coordination is collecting results and
// restoring manifest order afterwards.
func splitConcurrent(ctx context.Context, splitter *segment.Splitter, cuts []manifest.Cut, numJobs int) ([]cutResult, error) {
	var (
		mu      sync.Mutex
		results []cutResult
		done    atomic.Int64
	)
	progress := rate.Sometimes{Interval: time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numJobs)

	for i, cut := range cuts {
		i, cut := i, cut
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			segments, err := splitter.Split(cut)

			mu.Lock()
			results = append(results, cutResult{Index: i, Segments: segments, Err: err})
			mu.Unlock()

			n := done.Add(1)
			progress.Do(func() {
				slog.Info("split progress", "done", n, "total", len(cuts))
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results, nil
}
