package segment

import (
	"strings"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// WindowEnd returns the inclusive end bound of a window opening at start,
// shifted by Eps to avoid floating point boundary issues.
func WindowEnd(start, maxLen float64) float64 {
	return start + maxLen - Eps
}

// Trim cuts sup at a word-exact boundary so that it fits within maxLen
// seconds of windowStart. The trimmed supervision keeps its start; its text
// and word alignment are reduced to the selected prefix and its duration ends
// at the last selected word.
//
// ok is false when not even the first aligned word fits the window, in which
// case the utterance should be deferred to a later segment in full.
func (m *Matcher) Trim(sup manifest.Supervision, windowStart, maxLen float64) (trimmed manifest.Supervision, ok bool) {
	sel := m.Select(sup, windowStart, WindowEnd(windowStart, maxLen))
	if sel.Consumed == 0 {
		return manifest.Supervision{}, false
	}
	out := sup
	out.Duration = sel.LastEnd - sup.Start
	out.Text = strings.Join(sel.Tokens, " ")
	out.Alignment = map[string][]manifest.AlignmentItem{manifest.WordAlignmentKey: sel.Alignment}
	return out, true
}
