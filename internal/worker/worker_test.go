package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/segment"
)

// longCut builds a cut of numUtts back-to-back 10-second utterances, each
// with a word every 2 seconds.
func longCut(id string, numUtts int) manifest.Cut {
	sups := make([]manifest.Supervision, numUtts)
	for i := range sups {
		start := float64(i * 10)
		words := make([]manifest.AlignmentItem, 5)
		for j := range words {
			words[j] = manifest.AlignmentItem{Symbol: "w", Start: start + float64(j*2), Duration: 2}
		}
		sups[i] = manifest.Supervision{
			ID:       fmt.Sprintf("%s-u%d", id, i),
			Start:    start,
			Duration: 10,
			Speaker:  "A",
			Text:     "w w w w w",
			Alignment: map[string][]manifest.AlignmentItem{
				manifest.WordAlignmentKey: words,
			},
		}
	}
	return manifest.Cut{
		ID:           id,
		Duration:     float64(numUtts * 10),
		Supervisions: sups,
		Type:         manifest.TypeMonoCut,
	}
}

func runOnce(t *testing.T, numJobs int) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jsonl.gz")
	output := filepath.Join(dir, "out.jsonl.gz")

	cuts := []manifest.Cut{
		longCut("c1", 6),         // 60s, splits into two segments
		longCut("c2", 2),         // 20s, passes through
		{ID: "c3", Duration: -1}, // invalid, must be reported but not abort
	}
	if err := manifest.SaveMonoCuts(cuts, input); err != nil {
		t.Fatal(err)
	}

	summary, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		MaxLen:     30,
		NumJobs:    numJobs,
		Rules:      segment.DefaultRules(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if summary.CutsIn != 3 {
		t.Errorf("cuts in = %d, want 3", summary.CutsIn)
	}
	if len(summary.Failed) != 1 || summary.Failed[0].ID != "c3" {
		t.Fatalf("failed = %v, want only c3", summary.Failed)
	}

	out, err := manifest.LoadMonoCuts(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != summary.SegmentsOut {
		t.Errorf("saved %d segments, summary says %d", len(out), summary.SegmentsOut)
	}
	if len(out) < 3 {
		t.Fatalf("got %d segments, want the long cut split plus the short one", len(out))
	}
	for _, cut := range out {
		if cut.Duration > 30+segment.Eps {
			t.Errorf("segment %s duration = %g, want <= 30", cut.ID, cut.Duration)
		}
	}
	// Manifest order is preserved: c1's segments come before c2.
	last := out[len(out)-1]
	if last.ID != "c2" {
		t.Errorf("last segment = %s, want the untouched c2", last.ID)
	}
}

func TestRunSequential(t *testing.T) {
	runOnce(t, 1)
}

func TestRunConcurrent(t *testing.T) {
	runOnce(t, 4)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jsonl.gz")
	if err := manifest.SaveMonoCuts([]manifest.Cut{longCut("c1", 4)}, input); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "out.jsonl.gz"),
		MaxLen:     30,
		NumJobs:    1,
		Rules:      segment.DefaultRules(),
	})
	if err == nil {
		t.Error("expected a context error from a cancelled run")
	}
}
