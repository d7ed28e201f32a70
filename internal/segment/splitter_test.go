package segment

import (
	"testing"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

func continuationFlags(t *testing.T, cut manifest.Cut) map[string]bool {
	t.Helper()
	flags, ok := cut.Custom[manifest.PerSpeakerContinuationKey].(map[string]bool)
	if !ok {
		t.Fatalf("cut %s: missing continuation flags, custom = %v", cut.ID, cut.Custom)
	}
	return flags
}

func supIDs(cut manifest.Cut) []string {
	ids := make([]string, len(cut.Supervisions))
	for i, sup := range cut.Supervisions {
		ids[i] = sup.ID
	}
	return ids
}

func TestSplitShortCutUnchanged(t *testing.T) {
	sp := NewSplitter(30, DefaultRules())
	cut := manifest.Cut{
		ID:       "c1",
		Duration: 12,
		Supervisions: []manifest.Supervision{
			{ID: "u1", Start: 0, Duration: 5, Speaker: "A", Text: "hi"},
		},
	}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d cuts, want 1", len(out))
	}
	if out[0].ID != "c1" || out[0].Duration != 12 {
		t.Errorf("short cut was modified: %+v", out[0])
	}
}

func TestSplitNoSupervisions(t *testing.T) {
	sp := NewSplitter(30, DefaultRules())
	out, err := sp.Split(manifest.Cut{ID: "c1", Duration: 60})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("got %d cuts, want none", len(out))
	}
}

func TestSplitNegativeDuration(t *testing.T) {
	sp := NewSplitter(30, DefaultRules())
	if _, err := sp.Split(manifest.Cut{ID: "c1", Duration: -1}); err == nil {
		t.Error("expected an error for a negative cut duration")
	}
	cut := manifest.Cut{
		ID:       "c1",
		Duration: 60,
		Supervisions: []manifest.Supervision{
			{ID: "u1", Duration: -2},
		},
	}
	if _, err := sp.Split(cut); err == nil {
		t.Error("expected an error for a negative supervision duration")
	}
}

// Two speakers, the first running past the window: the first segment keeps
// the word-exact prefix and flags the speaker as continuing, the second opens
// at the other speaker and re-absorbs the overlapping tail as a fragment.
func TestSplitTrimAndCarry(t *testing.T) {
	sp := NewSplitter(30, DefaultRules())
	a := alignedSup("A", "spkA", "a1 a2 a3 a4 a5 a6 a7 a8", 0, []manifest.AlignmentItem{
		{Symbol: "a1", Start: 0, Duration: 5},
		{Symbol: "a2", Start: 5, Duration: 5},
		{Symbol: "a3", Start: 10, Duration: 5},
		{Symbol: "a4", Start: 15, Duration: 5},
		{Symbol: "a5", Start: 20, Duration: 5},
		{Symbol: "a6", Start: 25, Duration: 5},
		{Symbol: "a7", Start: 30, Duration: 5},
		{Symbol: "a8", Start: 35, Duration: 5},
	})
	b := alignedSup("B", "spkB", "b1 b2", 35, []manifest.AlignmentItem{
		{Symbol: "b1", Start: 35, Duration: 4},
		{Symbol: "b2", Start: 39, Duration: 5},
	})
	cut := manifest.Cut{ID: "meet", Duration: 45, Supervisions: []manifest.Supervision{a, b}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}

	first := out[0]
	if first.ID != "meet-0" || first.Start != 0 {
		t.Errorf("first segment = %s at %g, want meet-0 at 0", first.ID, first.Start)
	}
	if first.Duration != 25 {
		t.Errorf("first duration = %g, want 25 (five whole words)", first.Duration)
	}
	if got := supIDs(first); len(got) != 1 || got[0] != "A-0-0" {
		t.Fatalf("first segment sups = %v, want [A-0-0]", got)
	}
	if text := first.Supervisions[0].Text; text != "a1 a2 a3 a4 a5" {
		t.Errorf("first text = %q, want the five-word prefix", text)
	}
	flags := continuationFlags(t, first)
	if !flags["spkA"] {
		t.Errorf("spkA should be flagged as continuing, flags = %v", flags)
	}

	second := out[1]
	if second.ID != "meet-1" || second.Start != 35 {
		t.Errorf("second segment = %s at %g, want meet-1 at 35", second.ID, second.Start)
	}
	if second.Duration != 9 {
		t.Errorf("second duration = %g, want 9", second.Duration)
	}
	if got := supIDs(second); len(got) != 2 || got[0] != "B" || got[1] != "A-0-1_ovl" {
		t.Fatalf("second segment sups = %v, want [B A-0-1_ovl]", got)
	}
	frag := second.Supervisions[1]
	if frag.Text != "a8" || frag.Start != 0 || frag.Duration != 5 {
		t.Errorf("fragment = %q at %g+%g, want a8 at 0+5", frag.Text, frag.Start, frag.Duration)
	}
	flags = continuationFlags(t, second)
	if flags["spkA"] || flags["spkB"] {
		t.Errorf("no speaker continues past the last segment, flags = %v", flags)
	}
}

// An accumulated utterance overflowing the window rolls the scan back: it
// seeds the next segment in full and re-absorbs the seed speaker's overlap.
func TestSplitRollback(t *testing.T) {
	sp := NewSplitter(10, DefaultRules())
	a := alignedSup("A", "spkA", "a1 a2 a3 a4", 0, []manifest.AlignmentItem{
		{Symbol: "a1", Start: 0, Duration: 2},
		{Symbol: "a2", Start: 2, Duration: 2},
		{Symbol: "a3", Start: 4, Duration: 2},
		{Symbol: "a4", Start: 6, Duration: 2},
	})
	b := alignedSup("B", "spkB", "b1 b2 b3", 5, []manifest.AlignmentItem{
		{Symbol: "b1", Start: 5, Duration: 2},
		{Symbol: "b2", Start: 7, Duration: 2},
		{Symbol: "b3", Start: 9, Duration: 2},
	})
	cut := manifest.Cut{ID: "c", Duration: 20, Supervisions: []manifest.Supervision{a, b}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}

	first := out[0]
	if got := supIDs(first); len(got) != 2 || got[0] != "A-0-0" || got[1] != "B-1-1" {
		t.Fatalf("first segment sups = %v, want [A-0-0 B-1-1]", got)
	}
	if text := first.Supervisions[1].Text; text != "b1 b2" {
		t.Errorf("trimmed overlap text = %q, want %q", text, "b1 b2")
	}
	flags := continuationFlags(t, first)
	if flags["spkA"] || !flags["spkB"] {
		t.Errorf("flags = %v, want spkB continuing only", flags)
	}

	second := out[1]
	if second.Start != 5 || second.Duration != 6 {
		t.Errorf("second segment at %g+%g, want 5+6", second.Start, second.Duration)
	}
	if got := supIDs(second); len(got) != 2 || got[0] != "B-1-0" || got[1] != "A-0-1_ovl" {
		t.Fatalf("second segment sups = %v, want [B-1-0 A-0-1_ovl]", got)
	}
	if text := second.Supervisions[0].Text; text != "b1 b2 b3" {
		t.Errorf("re-seeded utterance text = %q, want the full text", text)
	}
	frag := second.Supervisions[1]
	if frag.Text != "a4" || frag.Start != 1 {
		t.Errorf("fragment = %q at %g, want a4 at 1", frag.Text, frag.Start)
	}
}

// An utterance whose first word does not fit the current window is deferred
// in full to the next segment rather than truncated or lost.
func TestSplitDeferUntrimmable(t *testing.T) {
	sp := NewSplitter(10, DefaultRules())
	a := alignedSup("A", "spkA", "a1 a2", 0, []manifest.AlignmentItem{
		{Symbol: "a1", Start: 0, Duration: 4},
		{Symbol: "a2", Start: 4, Duration: 4},
	})
	c := alignedSup("C", "spkC", "long", 9, []manifest.AlignmentItem{
		{Symbol: "long", Start: 9, Duration: 8},
	})
	cut := manifest.Cut{ID: "c", Duration: 20, Supervisions: []manifest.Supervision{a, c}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
	if got := supIDs(out[0]); len(got) != 1 || got[0] != "A-0-0" {
		t.Fatalf("first segment sups = %v, want [A-0-0]", got)
	}
	second := out[1]
	if got := supIDs(second); len(got) != 1 || got[0] != "C-1-0" {
		t.Fatalf("second segment sups = %v, want [C-1-0]", got)
	}
	if sup := second.Supervisions[0]; sup.Text != "long" || sup.Duration != 8 {
		t.Errorf("deferred utterance = %q dur %g, want full 8s word", sup.Text, sup.Duration)
	}
}

// When nothing of a group survives the close-out, no segment is emitted.
func TestSplitAllDropped(t *testing.T) {
	sp := NewSplitter(10, DefaultRules())
	c := alignedSup("C", "spkC", "long", 0, []manifest.AlignmentItem{
		{Symbol: "long", Start: 0, Duration: 15},
	})
	cut := manifest.Cut{ID: "c", Duration: 40, Supervisions: []manifest.Supervision{c}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("got %d segments, want none", len(out))
	}
}

// Fragments injected by overlap carrying are never carried again themselves.
func TestSplitNoCarryWithoutOverlap(t *testing.T) {
	sp := NewSplitter(10, DefaultRules())
	a := alignedSup("A", "spkA", "a1", 0, []manifest.AlignmentItem{
		{Symbol: "a1", Start: 0, Duration: 3},
	})
	b := alignedSup("B", "spkB", "b1 b2 b3", 5, []manifest.AlignmentItem{
		{Symbol: "b1", Start: 5, Duration: 2},
		{Symbol: "b2", Start: 7, Duration: 2},
		{Symbol: "b3", Start: 9, Duration: 2},
	})
	cut := manifest.Cut{ID: "c", Duration: 20, Supervisions: []manifest.Supervision{a, b}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
	// spkA stopped talking before B started: no fragment in segment two.
	if got := supIDs(out[1]); len(got) != 1 || got[0] != "B-1-0" {
		t.Errorf("second segment sups = %v, want [B-1-0] only", got)
	}
}

func TestSplitDisabledCarry(t *testing.T) {
	sp := NewSplitter(10, DefaultRules())
	sp.CarryOverlaps = false
	a := alignedSup("A", "spkA", "a1 a2 a3 a4", 0, []manifest.AlignmentItem{
		{Symbol: "a1", Start: 0, Duration: 2},
		{Symbol: "a2", Start: 2, Duration: 2},
		{Symbol: "a3", Start: 4, Duration: 2},
		{Symbol: "a4", Start: 6, Duration: 2},
	})
	b := alignedSup("B", "spkB", "b1 b2 b3", 5, []manifest.AlignmentItem{
		{Symbol: "b1", Start: 5, Duration: 2},
		{Symbol: "b2", Start: 7, Duration: 2},
		{Symbol: "b3", Start: 9, Duration: 2},
	})
	cut := manifest.Cut{ID: "c", Duration: 20, Supervisions: []manifest.Supervision{a, b}}

	out, err := sp.Split(cut)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
	if got := supIDs(out[1]); len(got) != 1 || got[0] != "B-1-0" {
		t.Errorf("second segment sups = %v, want no fragment", got)
	}
}
