// Package segment implements alignment-aware re-segmentation of long
// multi-speaker cuts into bounded-duration sub-segments that never split a
// spoken word.
package segment

import (
	"strings"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// Eps guards window-boundary comparisons against floating point
// misclassification.
const Eps = 1e-5

// defaultStripChars is the punctuation removed from tokens before matching
// them against alignment symbols.
const defaultStripChars = "!\"#$%&()*+,./:;<=>?@[\\]^_`'{|}~"

// Rules holds the token normalization rules used when matching written text
// against spoken-form alignment symbols.
type Rules struct {
	// WordMap reconciles written tokens with their aligned spoken form,
	// e.g. "mm-hmm" written vs "mmm" aligned. Keys and values are
	// normalized.
	WordMap map[string]string
	// StripChars are removed from tokens before comparison.
	StripChars string
}

// DefaultRules returns the rules used for the AMI and NOTSOFAR corpora.
func DefaultRules() Rules {
	return Rules{
		WordMap:    map[string]string{"mm-hmm": "mmm"},
		StripChars: defaultStripChars,
	}
}

// Matcher matches an utterance's raw text tokens against its word-level
// alignment stream.
type Matcher struct {
	rules Rules
}

// NewMatcher creates a matcher. Zero-valued rule fields fall back to the
// defaults.
func NewMatcher(rules Rules) *Matcher {
	def := DefaultRules()
	if rules.WordMap == nil {
		rules.WordMap = def.WordMap
	}
	if rules.StripChars == "" {
		rules.StripChars = def.StripChars
	}
	return &Matcher{rules: rules}
}

// Normalize lowercases a token and strips punctuation.
func (m *Matcher) Normalize(token string) string {
	token = strings.ToLower(token)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(m.rules.StripChars, r) {
			return -1
		}
		return r
	}, token)
}

// Selection is the outcome of selecting an utterance's tokens inside a time
// window.
type Selection struct {
	// Tokens are the selected raw text tokens, in order.
	Tokens []string
	// Alignment holds the covering alignment entry for each selected
	// aligned token.
	Alignment []manifest.AlignmentItem
	// FirstStart is the start time of the first selected aligned token, or
	// -1 when nothing was selected.
	FirstStart float64
	// LastEnd is the end time of the last consumed aligned token; it stays
	// at the utterance start when nothing was consumed.
	LastEnd float64
	// Consumed counts fully consumed alignment entries. Zero means not even
	// the first aligned word fits the window.
	Consumed int
}

// cursor tracks the position in the alignment stream: the current entry index
// and its not-yet-consumed normalized sub-words.
type cursor struct {
	entry int
	subs  []string
}

func (m *Matcher) splitSymbol(symbol string) []string {
	fields := strings.Fields(symbol)
	subs := make([]string, len(fields))
	for i, f := range fields {
		subs[i] = m.Normalize(f)
	}
	return subs
}

// Select walks the utterance's text tokens and alignment entries in lock-step
// and returns the tokens whose aligned timing falls inside the closed window
// [windowStart, windowEnd].
//
// Tokens that never match an alignment sub-word are unaligned filler: they
// are skipped until the first aligned token has been selected, and appended
// (inheriting no independent timing) afterwards. Selection stops permanently
// once an aligned token ends past windowEnd; tokens ending before windowStart
// advance the cursor without being selected.
func (m *Matcher) Select(sup manifest.Supervision, windowStart, windowEnd float64) Selection {
	sel := Selection{FirstStart: -1, LastEnd: sup.Start}
	words := sup.Words()
	if len(words) == 0 {
		return sel
	}

	cur := cursor{subs: m.splitSymbol(words[0].Symbol)}
	for _, token := range strings.Fields(sup.Text) {
		norm := m.Normalize(token)

		if cur.entry < len(words) && len(cur.subs) > 0 && m.matches(norm, cur.subs[0]) {
			entry := words[cur.entry]
			if entry.End() > windowEnd {
				break
			}
			if entry.Start >= windowStart {
				if sel.FirstStart < 0 {
					sel.FirstStart = entry.Start
				}
				sel.Tokens = append(sel.Tokens, token)
				sel.Alignment = append(sel.Alignment, entry)
			}
			cur.subs = cur.subs[1:]
			sel.LastEnd = entry.End()
			if len(cur.subs) == 0 {
				cur.entry++
				if cur.entry < len(words) {
					cur.subs = m.splitSymbol(words[cur.entry].Symbol)
				}
			}
			continue
		}

		// Unaligned filler keeps the timing of its aligned neighbour, but
		// only once something aligned has been selected.
		if sel.FirstStart >= 0 {
			sel.Tokens = append(sel.Tokens, token)
		}
	}

	sel.Consumed = cur.entry
	return sel
}

func (m *Matcher) matches(norm, sub string) bool {
	if norm == sub {
		return true
	}
	mapped, ok := m.rules.WordMap[norm]
	return ok && mapped == sub
}
