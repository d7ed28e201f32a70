// Package manifest defines lhotse-compatible manifest types (cuts,
// supervisions, recordings, word alignments) and their JSONL/YAML
// serialization.
package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// WordAlignmentKey is the alignment map key under which word-level timing
// entries are stored.
const WordAlignmentKey = "word"

// PerSpeakerContinuationKey is the cut custom-field key carrying the
// speaker → "continues in the next segment" flag map produced by splitting.
const PerSpeakerContinuationKey = "per_speaker_continuation"

// Supervision is one speaker's continuous spoken span with text and optional
// word-level timing. Start and Duration are relative to the enclosing cut.
type Supervision struct {
	ID          string                     `json:"id" yaml:"id"`
	RecordingID string                     `json:"recording_id,omitempty" yaml:"recording_id,omitempty"`
	Start       float64                    `json:"start" yaml:"start"`
	Duration    float64                    `json:"duration" yaml:"duration"`
	Channel     Channels                   `json:"channel,omitempty" yaml:"channel,omitempty"`
	Text        string                     `json:"text,omitempty" yaml:"text,omitempty"`
	Language    string                     `json:"language,omitempty" yaml:"language,omitempty"`
	Speaker     string                     `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Alignment   map[string][]AlignmentItem `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Custom      map[string]any             `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// End returns the supervision's end time.
func (s Supervision) End() float64 { return s.Start + s.Duration }

// Words returns the word-level alignment entries, or nil when absent.
func (s Supervision) Words() []AlignmentItem { return s.Alignment[WordAlignmentKey] }

// WithOffset returns a copy shifted by d seconds, including every alignment
// entry.
func (s Supervision) WithOffset(d float64) Supervision {
	out := s
	out.Start += d
	if s.Alignment != nil {
		out.Alignment = make(map[string][]AlignmentItem, len(s.Alignment))
		for key, items := range s.Alignment {
			shifted := make([]AlignmentItem, len(items))
			for i, item := range items {
				shifted[i] = item.WithOffset(d)
			}
			out.Alignment[key] = shifted
		}
	}
	return out
}

// AudioSource describes where one channel group of a recording lives.
type AudioSource struct {
	Type     string `json:"type" yaml:"type"`
	Channels []int  `json:"channels" yaml:"channels"`
	Source   string `json:"source" yaml:"source"`
}

// Recording is the audio side of a manifest entry.
type Recording struct {
	ID         string        `json:"id" yaml:"id"`
	Sources    []AudioSource `json:"sources" yaml:"sources"`
	SampleRate int           `json:"sampling_rate" yaml:"sampling_rate"`
	NumSamples int           `json:"num_samples" yaml:"num_samples"`
	Duration   float64       `json:"duration" yaml:"duration"`
	ChannelIDs []int         `json:"channel_ids,omitempty" yaml:"channel_ids,omitempty"`
}

// Cut is a bounded time window of one recording plus the supervisions active
// within it. Supervision times are relative to Start.
type Cut struct {
	ID           string         `json:"id" yaml:"id"`
	Start        float64        `json:"start" yaml:"start"`
	Duration     float64        `json:"duration" yaml:"duration"`
	Channel      Channels       `json:"channel,omitempty" yaml:"channel,omitempty"`
	Supervisions []Supervision  `json:"supervisions" yaml:"supervisions"`
	Recording    *Recording     `json:"recording,omitempty" yaml:"recording,omitempty"`
	Custom       map[string]any `json:"custom,omitempty" yaml:"custom,omitempty"`
	Type         string         `json:"type" yaml:"type"`
}

// End returns the cut's end time within its recording.
func (c Cut) End() float64 { return c.Start + c.Duration }

// MixTrack places one cut at an offset inside a mixed cut.
type MixTrack struct {
	Cut    Cut     `json:"cut" yaml:"cut"`
	Type   string  `json:"type" yaml:"type"`
	Offset float64 `json:"offset" yaml:"offset"`
}

// MixedCut is a synthetic mixture of several cuts offset against each other.
type MixedCut struct {
	ID     string     `json:"id" yaml:"id"`
	Tracks []MixTrack `json:"tracks" yaml:"tracks"`
	Type   string     `json:"type" yaml:"type"`
}

// Duration is the mixture length: the furthest track end.
func (m MixedCut) Duration() float64 {
	var end float64
	for _, t := range m.Tracks {
		if e := t.Offset + t.Cut.Duration; e > end {
			end = e
		}
	}
	return end
}

const (
	// TypeMonoCut and TypeMixedCut are the manifest "type" discriminators.
	TypeMonoCut  = "MonoCut"
	TypeMixedCut = "MixedCut"
)

// AnyCut wraps one line of a cut manifest, which holds either a mono cut or a
// mixed cut. Exactly one of the fields is set.
type AnyCut struct {
	Mono  *Cut
	Mixed *MixedCut
}

// ID returns the wrapped cut's id.
func (a AnyCut) ID() string {
	if a.Mono != nil {
		return a.Mono.ID
	}
	return a.Mixed.ID
}

// Duration returns the wrapped cut's duration.
func (a AnyCut) Duration() float64 {
	if a.Mono != nil {
		return a.Mono.Duration
	}
	return a.Mixed.Duration()
}

// MarshalJSON serializes the wrapped cut directly, without an extra nesting
// level.
func (a AnyCut) MarshalJSON() ([]byte, error) {
	switch {
	case a.Mono != nil:
		return json.Marshal(a.Mono)
	case a.Mixed != nil:
		return json.Marshal(a.Mixed)
	}
	return nil, fmt.Errorf("empty cut entry")
}

// UnmarshalJSON dispatches on the "type" discriminator.
func (a *AnyCut) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case TypeMixedCut:
		a.Mixed = &MixedCut{}
		return json.Unmarshal(data, a.Mixed)
	case TypeMonoCut, "":
		a.Mono = &Cut{}
		return json.Unmarshal(data, a.Mono)
	}
	return fmt.Errorf("unsupported cut type %q", probe.Type)
}

// MarshalYAML mirrors MarshalJSON for YAML manifests.
func (a AnyCut) MarshalYAML() (any, error) {
	switch {
	case a.Mono != nil:
		return a.Mono, nil
	case a.Mixed != nil:
		return a.Mixed, nil
	}
	return nil, fmt.Errorf("empty cut entry")
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML manifests.
func (a *AnyCut) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}
	switch probe.Type {
	case TypeMixedCut:
		a.Mixed = &MixedCut{}
		return value.Decode(a.Mixed)
	case TypeMonoCut, "":
		a.Mono = &Cut{}
		return value.Decode(a.Mono)
	}
	return fmt.Errorf("unsupported cut type %q", probe.Type)
}
