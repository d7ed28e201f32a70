package segment

import (
	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// FilterPunctuationAlignments returns a copy of the cut with alignment
// entries whose symbol normalizes to the empty string removed. Such entries
// carry no spoken word and would stall the alignment cursor.
func (m *Matcher) FilterPunctuationAlignments(cut manifest.Cut) manifest.Cut {
	out := cut
	out.Supervisions = make([]manifest.Supervision, len(cut.Supervisions))
	for i, sup := range cut.Supervisions {
		words := sup.Words()
		if len(words) == 0 {
			out.Supervisions[i] = sup
			continue
		}
		filtered := make([]manifest.AlignmentItem, 0, len(words))
		for _, w := range words {
			if m.Normalize(w.Symbol) == "" {
				continue
			}
			filtered = append(filtered, w)
		}
		newSup := sup
		newSup.Alignment = make(map[string][]manifest.AlignmentItem, len(sup.Alignment))
		for key, items := range sup.Alignment {
			newSup.Alignment[key] = items
		}
		newSup.Alignment[manifest.WordAlignmentKey] = filtered
		out.Supervisions[i] = newSup
	}
	return out
}
