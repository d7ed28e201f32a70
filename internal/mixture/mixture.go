// Package mixture builds synthetic multi-speaker mixtures from
// single-speaker cut manifests.
package mixture

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/internal/manifest"
)

// Settings configures mixture generation.
type Settings struct {
	// MaxLen is the maximum mixture duration in seconds; cuts longer than
	// this are excluded and track offsets are clamped so no track ends past
	// it.
	MaxLen float64
	// NumSpeakers is how many distinct speakers each mixture samples.
	NumSpeakers int
	// NumMixtures is how many mixtures to generate.
	NumMixtures int
	// AllowedPause is the maximum silence inserted between two mixed cuts.
	AllowedPause float64
	// Seed makes generation reproducible.
	Seed int64
}

// Generator samples mixtures from per-speaker cut pools.
type Generator struct {
	settings Settings
	rng      *rand.Rand
}

// NewGenerator creates a seeded generator.
func NewGenerator(settings Settings) *Generator {
	return &Generator{
		settings: settings,
		rng:      rand.New(rand.NewSource(settings.Seed)),
	}
}

// Generate builds NumMixtures mixed cuts out of the given pool. Cuts longer
// than MaxLen are dropped first; each mixture samples NumSpeakers distinct
// speakers and one cut per speaker.
func (g *Generator) Generate(cuts []manifest.Cut) ([]manifest.MixedCut, error) {
	pools := make(map[string][]manifest.Cut)
	for _, cut := range cuts {
		if cut.Duration > g.settings.MaxLen {
			continue
		}
		for _, speaker := range cutSpeakers(cut) {
			pools[speaker] = append(pools[speaker], cut)
		}
	}

	speakers := make([]string, 0, len(pools))
	for speaker := range pools {
		speakers = append(speakers, speaker)
	}
	sort.Strings(speakers)

	if len(speakers) < g.settings.NumSpeakers {
		return nil, fmt.Errorf("need %d speakers, pool has %d", g.settings.NumSpeakers, len(speakers))
	}

	mixtures := make([]manifest.MixedCut, 0, g.settings.NumMixtures)
	for i := 0; i < g.settings.NumMixtures; i++ {
		sampled := g.sampleSpeakers(speakers)
		picked := make([]manifest.Cut, len(sampled))
		for j, speaker := range sampled {
			pool := pools[speaker]
			picked[j] = pool[g.rng.Intn(len(pool))]
		}
		mixtures = append(mixtures, g.mix(picked))
	}
	return mixtures, nil
}

// sampleSpeakers draws NumSpeakers distinct speakers.
func (g *Generator) sampleSpeakers(speakers []string) []string {
	perm := g.rng.Perm(len(speakers))
	sampled := make([]string, g.settings.NumSpeakers)
	for i := range sampled {
		sampled[i] = speakers[perm[i]]
	}
	return sampled
}

// mix places the picked cuts at sampled offsets and assembles the mixed cut.
func (g *Generator) mix(picked []manifest.Cut) manifest.MixedCut {
	durations := make([]float64, len(picked))
	for i, cut := range picked {
		durations[i] = cut.Duration
	}
	offsets := g.sampleOffsets(durations)

	tracks := make([]manifest.MixTrack, len(picked))
	ids := make([]string, len(picked))
	for i, cut := range picked {
		tracks[i] = manifest.MixTrack{Cut: cut, Type: "MixTrack", Offset: offsets[i]}
		ids[i] = fmt.Sprintf("%s_%.2f_", cut.ID, offsets[i])
	}
	return manifest.MixedCut{
		ID:     strings.Join(ids, "-"),
		Tracks: tracks,
		Type:   manifest.TypeMixedCut,
	}
}

// sampleOffsets mixes the cuts pairwise: each new cut is placed against the
// span built so far, anywhere from full overlap to AllowedPause seconds of
// silence after it, then every offset is clamped so no track ends past
// MaxLen.
func (g *Generator) sampleOffsets(durations []float64) []float64 {
	offsets := make([]float64, len(durations))
	prev := durations[0]
	for i := 1; i < len(durations); i++ {
		first, second := g.mixTwo(prev, durations[i])
		for j := range offsets {
			offsets[j] += first
		}
		offsets[i] = second
		prev = math.Max(first+prev, second+durations[i])
	}
	for i := range offsets {
		if offsets[i]+durations[i] > g.settings.MaxLen {
			offsets[i] = g.settings.MaxLen - durations[i]
		}
	}
	return offsets
}

// mixTwo samples relative placement of two spans. A positive sample inserts
// a pause after the first span; sampling below -len1 pushes the second span
// in front of the first, in which case the first is offset instead.
func (g *Generator) mixTwo(len1, len2 float64) (float64, float64) {
	low := -len1 - len2 - g.settings.AllowedPause
	high := g.settings.AllowedPause
	offset := low + g.rng.Float64()*(high-low)
	if -offset <= len1 {
		return 0, len1 + offset
	}
	return -(len1 + offset), 0
}

func cutSpeakers(cut manifest.Cut) []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, sup := range cut.Supervisions {
		if _, ok := seen[sup.Speaker]; ok {
			continue
		}
		seen[sup.Speaker] = struct{}{}
		speakers = append(speakers, sup.Speaker)
	}
	sort.Strings(speakers)
	return speakers
}
