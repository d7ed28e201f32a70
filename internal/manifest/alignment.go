package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AlignmentItem is one word-level timing entry. On the wire it is the
// 3-element array [symbol, start, duration], matching the lhotse manifest
// format. A symbol may contain several space-separated normalized words.
type AlignmentItem struct {
	Symbol   string
	Start    float64
	Duration float64
}

// End returns the entry's end time.
func (a AlignmentItem) End() float64 { return a.Start + a.Duration }

// WithOffset returns a copy shifted by d seconds.
func (a AlignmentItem) WithOffset(d float64) AlignmentItem {
	a.Start += d
	return a
}

// MarshalJSON encodes the entry as [symbol, start, duration].
func (a AlignmentItem) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Symbol, a.Start, a.Duration})
}

// UnmarshalJSON decodes the [symbol, start, duration] array form.
func (a *AlignmentItem) UnmarshalJSON(data []byte) error {
	var tuple []any
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	return a.fromTuple(tuple)
}

// MarshalYAML encodes the entry as [symbol, start, duration].
func (a AlignmentItem) MarshalYAML() (any, error) {
	return []any{a.Symbol, a.Start, a.Duration}, nil
}

// UnmarshalYAML decodes the [symbol, start, duration] array form.
func (a *AlignmentItem) UnmarshalYAML(value *yaml.Node) error {
	var tuple []any
	if err := value.Decode(&tuple); err != nil {
		return err
	}
	return a.fromTuple(tuple)
}

func (a *AlignmentItem) fromTuple(tuple []any) error {
	if len(tuple) != 3 {
		return fmt.Errorf("alignment item: want 3 elements, got %d", len(tuple))
	}
	symbol, ok := tuple[0].(string)
	if !ok {
		return fmt.Errorf("alignment item: symbol is %T, want string", tuple[0])
	}
	start, err := toFloat(tuple[1])
	if err != nil {
		return fmt.Errorf("alignment item start: %w", err)
	}
	duration, err := toFloat(tuple[2])
	if err != nil {
		return fmt.Errorf("alignment item duration: %w", err)
	}
	a.Symbol = symbol
	a.Start = start
	a.Duration = duration
	return nil
}

// Channels is a channel field that may be serialized as a single integer or a
// list of integers, both of which appear in real manifests.
type Channels []int

// MarshalJSON emits a bare integer for single-channel values.
func (c Channels) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]int(c))
}

// UnmarshalJSON accepts either a bare integer or a list.
func (c *Channels) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Channels{single}
		return nil
	}
	var list []int
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	*c = Channels(list)
	return nil
}

// MarshalYAML emits a bare integer for single-channel values.
func (c Channels) MarshalYAML() (any, error) {
	if len(c) == 1 {
		return c[0], nil
	}
	return []int(c), nil
}

// UnmarshalYAML accepts either a bare integer or a list.
func (c *Channels) UnmarshalYAML(value *yaml.Node) error {
	var single int
	if err := value.Decode(&single); err == nil {
		*c = Channels{single}
		return nil
	}
	var list []int
	if err := value.Decode(&list); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	*c = Channels(list)
	return nil
}

// Normalized returns the channel list with the lhotse STM convention applied:
// an absent channel field means channel 1.
func (c Channels) Normalized() []int {
	if len(c) == 0 {
		return []int{1}
	}
	return c
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("want number, got %T", v)
}
