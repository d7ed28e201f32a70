package manifest

import (
	"path/filepath"
	"testing"
)

func testCuts() []Cut {
	return []Cut{
		{
			ID:       "c1",
			Start:    0,
			Duration: 10,
			Channel:  Channels{0},
			Supervisions: []Supervision{
				{
					ID:          "u1",
					RecordingID: "r1",
					Start:       1,
					Duration:    3,
					Speaker:     "A",
					Text:        "hello world",
					Alignment: map[string][]AlignmentItem{
						WordAlignmentKey: {
							{Symbol: "hello", Start: 1, Duration: 1},
							{Symbol: "world", Start: 2.5, Duration: 1.5},
						},
					},
				},
			},
			Type: TypeMonoCut,
		},
		{ID: "c2", Start: 5, Duration: 7, Supervisions: []Supervision{}, Type: TypeMonoCut},
	}
}

func TestMonoCutsJSONLGzRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuts.jsonl.gz")

	if err := SaveMonoCuts(testCuts(), path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadMonoCuts(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(back) != 2 {
		t.Fatalf("got %d cuts, want 2", len(back))
	}
	if back[0].ID != "c1" || back[1].ID != "c2" {
		t.Errorf("order not preserved: %s, %s", back[0].ID, back[1].ID)
	}
	words := back[0].Supervisions[0].Words()
	if len(words) != 2 || words[1].Symbol != "world" || words[1].Start != 2.5 {
		t.Errorf("alignment round trip = %v", words)
	}
}

func TestCutsYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuts.yaml")

	cuts := testCuts()
	entries := []AnyCut{{Mono: &cuts[0]}}
	if err := SaveCuts(entries, path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadCuts(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0].Mono == nil || back[0].ID() != "c1" {
		t.Fatalf("yaml round trip = %+v", back)
	}
	words := back[0].Mono.Supervisions[0].Words()
	if len(words) != 2 || words[0].Symbol != "hello" {
		t.Errorf("yaml alignment round trip = %v", words)
	}
}

func TestLoadMonoCutsRejectsMixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuts.jsonl")

	mixed := []MixedCut{{
		ID:     "m1",
		Tracks: []MixTrack{{Cut: testCuts()[0], Offset: 0}},
	}}
	if err := SaveMixedCuts(mixed, path); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMonoCuts(path); err == nil {
		t.Error("expected an error for a mixed cut in a mono-only load")
	}
}

func TestSupervisionsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supervisions.jsonl.gz")

	sups := []Supervision{
		{ID: "u1", RecordingID: "r1", Start: 0, Duration: 2, Channel: Channels{0, 1}},
		{ID: "u2", RecordingID: "r1", Start: 2, Duration: 2},
	}
	if err := SaveSupervisions(sups, path); err != nil {
		t.Fatal(err)
	}
	back, err := LoadSupervisions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d supervisions, want 2", len(back))
	}
	if len(back[0].Channel) != 2 {
		t.Errorf("channel list round trip = %v", back[0].Channel)
	}
	if len(back[1].Channel) != 0 {
		t.Errorf("absent channel round trip = %v", back[1].Channel)
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	if _, err := LoadCuts("cuts.txt"); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}
