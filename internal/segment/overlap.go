package segment

import (
	"fmt"
	"strings"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// overlapSuffix marks supervisions injected by overlap carrying.
const overlapSuffix = "_ovl"

// carryOverlaps injects word-exact fragments of previous-group utterances
// that another speaker was still speaking when the new group's seed starts.
//
// The overlap test runs against the original (untrimmed) utterance intervals:
// what matters is whether the speaker was talking across the boundary, not
// how much of the utterance survived the previous close-out. Fragments never
// carry further fragments.
func (sp *Splitter) carryOverlaps(sups []manifest.Supervision, prev []member, seed manifest.Supervision, seedIdx int, group []member) []member {
	for _, mb := range prev {
		if strings.HasSuffix(mb.sup.ID, overlapSuffix) {
			continue
		}
		if mb.idx == seedIdx {
			continue
		}
		orig := sups[mb.idx]
		if orig.Speaker == seed.Speaker {
			continue
		}
		if !(orig.Start <= seed.Start && seed.Start < orig.End()) {
			continue
		}

		sel := sp.matcher.Select(orig, seed.Start, WindowEnd(seed.Start, sp.MaxLen))
		if sel.FirstStart < 0 {
			// Nothing of the overlapping utterance survives inside the new
			// window.
			continue
		}

		frag := orig
		frag.ID = fmt.Sprintf("%s-%d-%d%s", orig.ID, mb.idx, len(group), overlapSuffix)
		frag.Start = sel.FirstStart
		frag.Duration = sel.LastEnd - sel.FirstStart
		frag.Text = strings.Join(sel.Tokens, " ")
		frag.Alignment = map[string][]manifest.AlignmentItem{manifest.WordAlignmentKey: sel.Alignment}
		group = append(group, member{sup: frag, idx: mb.idx})
	}
	return group
}
