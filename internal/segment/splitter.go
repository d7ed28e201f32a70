package segment

import (
	"fmt"
	"math"
	"sort"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// member pairs a working-copy supervision with the scan position of its
// underlying utterance.
type member struct {
	sup manifest.Supervision
	idx int
}

// scanState is the splitter's control state.
type scanState int

const (
	// stateScanning is normal forward accumulation.
	stateScanning scanState = iota
	// stateFallingBack means the scan resumed after an overflow close-out;
	// the next appended utterance re-absorbs overlap fragments from the
	// group just closed.
	stateFallingBack
)

// Splitter splits long multi-speaker cuts into sub-segments of at most
// MaxLen seconds, trimming utterances at word-exact boundaries and carrying
// cross-speaker overlap context across segment boundaries.
type Splitter struct {
	MaxLen float64
	// CarryOverlaps enables injecting overlap fragments when a group opens
	// right after an overflow close-out.
	CarryOverlaps bool

	matcher *Matcher
}

// NewSplitter creates a splitter with overlap carrying enabled.
func NewSplitter(maxLen float64, rules Rules) *Splitter {
	return &Splitter{
		MaxLen:        maxLen,
		CarryOverlaps: true,
		matcher:       NewMatcher(rules),
	}
}

// Matcher returns the splitter's alignment matcher.
func (sp *Splitter) Matcher() *Matcher { return sp.matcher }

// Split re-segments one cut. The input is never mutated; every returned cut
// is a fresh value whose supervisions are re-offset so the earliest starts at
// zero, carrying a speaker → "continues in next segment" flag map under
// Custom[manifest.PerSpeakerContinuationKey].
//
// A cut without supervisions yields no output; a cut already within MaxLen is
// returned unchanged as a single-element slice.
func (sp *Splitter) Split(cut manifest.Cut) ([]manifest.Cut, error) {
	if err := validateCut(cut); err != nil {
		return nil, err
	}
	if len(cut.Supervisions) == 0 {
		return nil, nil
	}
	if cut.Duration <= sp.MaxLen {
		return []manifest.Cut{cut}, nil
	}

	sups := make([]manifest.Supervision, len(cut.Supervisions))
	copy(sups, cut.Supervisions)
	sort.SliceStable(sups, func(i, j int) bool { return sups[i].Start < sups[j].Start })

	groups, groupFlags := sp.scan(sups)

	out := make([]manifest.Cut, 0, len(groups))
	for i, g := range groups {
		sub, err := sp.buildSegment(cut, g, groupFlags[i], i)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

// scan is the forward accumulation / fallback loop. It returns the closed
// groups in chronological order along with their per-speaker continuation
// flags.
func (sp *Splitter) scan(sups []manifest.Supervision) ([][]member, []map[string]bool) {
	var (
		groups     [][]member
		groupFlags []map[string]bool
	)

	seed := sups[0]
	seed.ID = fmt.Sprintf("%s-0-0", seed.ID)
	group := []member{{sup: seed, idx: 0}}
	flags := map[string]bool{}
	state := stateScanning

	idx := 1
	for {
		var next *manifest.Supervision
		if idx < len(sups) {
			next = &sups[idx]
		}

		// Accumulate while the next utterance starts inside the group's
		// window.
		if next != nil && (len(group) == 0 || next.Start-group[0].sup.Start < sp.MaxLen) {
			mb := member{sup: *next, idx: idx}
			mb.sup.ID = fmt.Sprintf("%s-%d-%d", next.ID, idx, len(group))
			group = append(group, mb)
			if state == stateFallingBack && len(groups) > 0 && sp.CarryOverlaps {
				group = sp.carryOverlaps(sups, groups[len(groups)-1], *next, idx, group)
			}
			state = stateScanning
			idx++
			continue
		}

		if next == nil && len(group) == 0 {
			break
		}

		// Close-out: trim or drop every utterance that exceeds the window.
		seedIdx := group[0].idx
		groupStart := group[0].sup.Start
		fallbackIdx := -1
		kept := make([]member, 0, len(group))
		for _, mb := range group {
			flags[mb.sup.Speaker] = false
			if mb.sup.End()-groupStart <= sp.MaxLen {
				kept = append(kept, mb)
				continue
			}
			if fallbackIdx == -1 || mb.idx < fallbackIdx {
				fallbackIdx = mb.idx
			}
			trimmed, ok := sp.matcher.Trim(mb.sup, groupStart, sp.MaxLen)
			if !ok {
				// Not even the first aligned word fits; the utterance is
				// deferred to a later group in full.
				continue
			}
			flags[mb.sup.Speaker] = true
			mb.sup = trimmed
			kept = append(kept, mb)
		}

		if len(kept) > 0 {
			groups = append(groups, kept)
			groupFlags = append(groupFlags, flags)
		}
		flags = map[string]bool{}

		switch {
		case fallbackIdx != -1 && fallbackIdx > seedIdx:
			// Roll back: the earliest overflow utterance seeds the next
			// group and re-absorbs overlap from the group just closed.
			group = nil
			idx = fallbackIdx
			state = stateFallingBack
		case next != nil:
			group = []member{{sup: *next, idx: idx}}
			if fallbackIdx != -1 && len(groups) > 0 && sp.CarryOverlaps {
				group = sp.carryOverlaps(sups, groups[len(groups)-1], *next, idx, group)
			}
			state = stateScanning
			idx++
		default:
			group = nil
		}
	}

	return groups, groupFlags
}

// buildSegment turns one closed group into an output cut, re-offset so the
// earliest utterance starts at zero.
func (sp *Splitter) buildSegment(cut manifest.Cut, g []member, flags map[string]bool, i int) (manifest.Cut, error) {
	minStart, maxEnd := g[0].sup.Start, g[0].sup.End()
	for _, mb := range g[1:] {
		minStart = math.Min(minStart, mb.sup.Start)
		maxEnd = math.Max(maxEnd, mb.sup.End())
	}
	duration := maxEnd - minStart
	if duration > sp.MaxLen+Eps {
		return manifest.Cut{}, fmt.Errorf("cut %s segment %d: duration %.5f exceeds max length %g", cut.ID, i, duration, sp.MaxLen)
	}

	newSups := make([]manifest.Supervision, len(g))
	for j, mb := range g {
		shifted := mb.sup.WithOffset(-minStart)
		if shifted.Start < 0 {
			return manifest.Cut{}, fmt.Errorf("cut %s segment %d: supervision %s starts before segment", cut.ID, i, shifted.ID)
		}
		newSups[j] = shifted
	}

	custom := make(map[string]any, len(cut.Custom)+1)
	for k, v := range cut.Custom {
		custom[k] = v
	}
	custom[manifest.PerSpeakerContinuationKey] = flags

	sub := cut
	sub.ID = fmt.Sprintf("%s-%d", cut.ID, i)
	sub.Start = cut.Start + minStart
	sub.Duration = duration
	sub.Supervisions = newSups
	sub.Custom = custom
	return sub, nil
}

func validateCut(cut manifest.Cut) error {
	if cut.Duration < 0 {
		return fmt.Errorf("cut %s: negative duration %.3f", cut.ID, cut.Duration)
	}
	for _, sup := range cut.Supervisions {
		if sup.Duration < 0 {
			return fmt.Errorf("cut %s: supervision %s has negative duration %.3f", cut.ID, sup.ID, sup.Duration)
		}
	}
	return nil
}
