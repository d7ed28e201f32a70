package manifest

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxLineSize bounds a single JSONL manifest line. Cuts with dense word
// alignments produce long lines, so the default scanner limit is too small.
const maxLineSize = 64 * 1024 * 1024

type format int

const (
	formatJSONL format = iota
	formatJSON
	formatYAML
)

func detectFormat(path string) (format, bool, error) {
	name := path
	gzipped := strings.HasSuffix(name, ".gz")
	if gzipped {
		name = strings.TrimSuffix(name, ".gz")
	}
	switch {
	case strings.HasSuffix(name, ".jsonl"):
		return formatJSONL, gzipped, nil
	case strings.HasSuffix(name, ".json"):
		return formatJSON, gzipped, nil
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return formatYAML, gzipped, nil
	}
	return 0, false, fmt.Errorf("unsupported manifest extension: %s", path)
}

func loadItems[T any](path string) ([]T, error) {
	fmtKind, gzipped, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var items []T
	switch fmtKind {
	case formatJSONL:
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var item T
			if err := json.Unmarshal([]byte(text), &item); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, line, err)
			}
			items = append(items, item)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	case formatJSON:
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case formatYAML:
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return items, nil
}

func saveItems[T any](items []T, path string) (err error) {
	fmtKind, gzipped, err := detectFormat(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var zw *gzip.Writer
	if gzipped {
		zw = gzip.NewWriter(f)
		w = zw
	}
	bw := bufio.NewWriter(w)

	switch fmtKind {
	case formatJSONL:
		for _, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encode %s: %w", path, err)
			}
			if _, err := bw.Write(data); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	case formatJSON:
		enc := json.NewEncoder(bw)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(bw)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCuts reads a cut manifest that may contain both mono and mixed cuts.
func LoadCuts(path string) ([]AnyCut, error) {
	return loadItems[AnyCut](path)
}

// SaveCuts writes a cut manifest, preserving entry order.
func SaveCuts(cuts []AnyCut, path string) error {
	return saveItems(cuts, path)
}

// LoadMonoCuts reads a cut manifest and requires every entry to be a mono
// cut.
func LoadMonoCuts(path string) ([]Cut, error) {
	entries, err := LoadCuts(path)
	if err != nil {
		return nil, err
	}
	cuts := make([]Cut, 0, len(entries))
	for _, e := range entries {
		if e.Mono == nil {
			return nil, fmt.Errorf("%s: cut %s is not a mono cut", path, e.ID())
		}
		cuts = append(cuts, *e.Mono)
	}
	return cuts, nil
}

// SaveMonoCuts writes mono cuts as a cut manifest, filling in the type
// discriminator when absent.
func SaveMonoCuts(cuts []Cut, path string) error {
	out := make([]Cut, len(cuts))
	for i, c := range cuts {
		if c.Type == "" {
			c.Type = TypeMonoCut
		}
		out[i] = c
	}
	return saveItems(out, path)
}

// SaveMixedCuts writes mixed cuts as a cut manifest.
func SaveMixedCuts(cuts []MixedCut, path string) error {
	out := make([]MixedCut, len(cuts))
	for i, c := range cuts {
		if c.Type == "" {
			c.Type = TypeMixedCut
		}
		tracks := make([]MixTrack, len(c.Tracks))
		copy(tracks, c.Tracks)
		for j := range tracks {
			if tracks[j].Type == "" {
				tracks[j].Type = "MixTrack"
			}
			if tracks[j].Cut.Type == "" {
				tracks[j].Cut.Type = TypeMonoCut
			}
		}
		c.Tracks = tracks
		out[i] = c
	}
	return saveItems(out, path)
}

// LoadSupervisions reads a supervisions manifest.
func LoadSupervisions(path string) ([]Supervision, error) {
	return loadItems[Supervision](path)
}

// SaveSupervisions writes a supervisions manifest.
func SaveSupervisions(sups []Supervision, path string) error {
	return saveItems(sups, path)
}

// LoadRecordings reads a recordings manifest.
func LoadRecordings(path string) ([]Recording, error) {
	return loadItems[Recording](path)
}
