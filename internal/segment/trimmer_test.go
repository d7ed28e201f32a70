package segment

import (
	"testing"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

func TestTrimReducesToWindow(t *testing.T) {
	m := NewMatcher(DefaultRules())
	sup := alignedSup("u1", "A", "one two three four", 1, []manifest.AlignmentItem{
		{Symbol: "one", Start: 1, Duration: 2},
		{Symbol: "two", Start: 3, Duration: 2},
		{Symbol: "three", Start: 5, Duration: 2},
		{Symbol: "four", Start: 7, Duration: 2},
	})

	trimmed, ok := m.Trim(sup, 1, 6)
	if !ok {
		t.Fatal("expected a trimmable supervision")
	}

	// "three" ends exactly at 7.0, past the eps-shifted window end.
	if trimmed.Start != 1 {
		t.Errorf("start = %g, want 1", trimmed.Start)
	}
	if trimmed.Duration != 4 {
		t.Errorf("duration = %g, want 4", trimmed.Duration)
	}
	if trimmed.Text != "one two" {
		t.Errorf("text = %q, want %q", trimmed.Text, "one two")
	}
	if got := len(trimmed.Words()); got != 2 {
		t.Errorf("alignment entries = %d, want 2", got)
	}
}

func TestTrimFirstWordDoesNotFit(t *testing.T) {
	m := NewMatcher(DefaultRules())
	sup := alignedSup("u1", "A", "endless", 0, []manifest.AlignmentItem{
		{Symbol: "endless", Start: 0, Duration: 10},
	})

	if _, ok := m.Trim(sup, 0, 5); ok {
		t.Error("expected ok=false when the first aligned word exceeds the window")
	}
}

func TestTrimKeepsOriginalUntouched(t *testing.T) {
	m := NewMatcher(DefaultRules())
	sup := alignedSup("u1", "A", "one two", 0, []manifest.AlignmentItem{
		{Symbol: "one", Start: 0, Duration: 2},
		{Symbol: "two", Start: 2, Duration: 2},
	})

	if _, ok := m.Trim(sup, 0, 3); !ok {
		t.Fatal("expected a trimmable supervision")
	}
	if sup.Text != "one two" || len(sup.Words()) != 2 {
		t.Errorf("input supervision was mutated: %+v", sup)
	}
}
