// Package stm converts supervision manifests to NIST STM transcript files.
package stm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// manifestName matches supervision manifest file names like
// "ami-sdm_supervisions_train.jsonl.gz" and captures the corpus prefix and
// the optional split suffix.
var manifestName = regexp.MustCompile(`^(.+?)_supervisions(?:_(.+))?\.jsonl\.gz$`)

type row struct {
	recording string
	channel   int
	start     float64
	line      string
}

// Lines renders one supervision set as STM lines, sorted by recording,
// channel, and start time.
func Lines(sups []manifest.Supervision) []string {
	rows := make([]row, 0, len(sups))
	for _, sup := range sups {
		recID := sup.RecordingID
		if recID == "" {
			recID = sup.ID
		}
		speaker := sup.Speaker
		if speaker == "" {
			speaker = "unknown"
		}
		text := sanitize(sup.Text)
		for _, ch := range sup.Channel.Normalized() {
			rows = append(rows, row{
				recording: recID,
				channel:   ch,
				start:     sup.Start,
				line: fmt.Sprintf("%s %d %s %.3f %.3f %s",
					recID, ch, speaker, sup.Start, sup.End(), text),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].recording != rows[j].recording {
			return rows[i].recording < rows[j].recording
		}
		if rows[i].channel != rows[j].channel {
			return rows[i].channel < rows[j].channel
		}
		return rows[i].start < rows[j].start
	})
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.line
	}
	return lines
}

// sanitize collapses whitespace (tabs, newlines, repeated spaces) so the
// transcript stays a single STM field.
func sanitize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ConvertTree converts every supervision manifest found under
// root/manifests/<dataset>/ into an STM file under outputDir/<dataset>/,
// named after the manifest's corpus prefix and split suffix. When outputDir
// is empty, root/stms is used.
func ConvertTree(root, outputDir string) error {
	if outputDir == "" {
		outputDir = filepath.Join(root, "stms")
	}

	pattern := filepath.Join(root, "manifests", "*", "*supervisions*.jsonl.gz")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no supervision manifests found under %s", filepath.Join(root, "manifests"))
	}

	for _, path := range paths {
		name := filepath.Base(path)
		groups := manifestName.FindStringSubmatch(name)
		if groups == nil {
			slog.Warn("skipping manifest with unexpected name", "file", name)
			continue
		}
		prefix, suffix := groups[1], groups[2]
		dataset := filepath.Base(filepath.Dir(path))

		stmName := prefix + ".stm"
		if suffix != "" {
			stmName = prefix + "_" + suffix + ".stm"
		}
		stmPath := filepath.Join(outputDir, dataset, stmName)

		slog.Info("converting manifest", "input", filepath.Join(dataset, name), "output", stmPath)

		sups, err := manifest.LoadSupervisions(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		lines := Lines(sups)

		if err := os.MkdirAll(filepath.Dir(stmPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(stmPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", stmPath, err)
		}
		slog.Info("wrote stm", "lines", len(lines), "output", stmPath)
	}
	return nil
}
