package manifest

import (
	"log/slog"
	"sort"
)

// FromManifests assembles one cut per recording, attaching the supervisions
// that reference it. Supervisions pointing at unknown recordings are dropped
// and those extending past the recording bounds are clamped, mirroring what
// lhotse's fix_manifests does before CutSet.from_manifests.
func FromManifests(recordings []Recording, supervisions []Supervision) []Cut {
	byRecording := make(map[string][]Supervision, len(recordings))
	known := make(map[string]Recording, len(recordings))
	for _, rec := range recordings {
		known[rec.ID] = rec
	}

	dropped := 0
	clamped := 0
	for _, sup := range supervisions {
		rec, ok := known[sup.RecordingID]
		if !ok {
			dropped++
			continue
		}
		if sup.Start < 0 {
			sup.Duration += sup.Start
			sup.Start = 0
			clamped++
		}
		if sup.End() > rec.Duration {
			sup.Duration = rec.Duration - sup.Start
			clamped++
		}
		if sup.Duration <= 0 {
			dropped++
			continue
		}
		byRecording[sup.RecordingID] = append(byRecording[sup.RecordingID], sup)
	}
	if dropped > 0 || clamped > 0 {
		slog.Warn("fixed manifests", "dropped_supervisions", dropped, "clamped_supervisions", clamped)
	}

	cuts := make([]Cut, 0, len(recordings))
	for _, rec := range recordings {
		sups, ok := byRecording[rec.ID]
		if !ok {
			continue
		}
		sort.SliceStable(sups, func(i, j int) bool { return sups[i].Start < sups[j].Start })
		cuts = append(cuts, Cut{
			ID:           rec.ID,
			Start:        0,
			Duration:     rec.Duration,
			Channel:      recordingChannels(rec),
			Supervisions: sups,
			Recording:    &rec,
			Type:         TypeMonoCut,
		})
	}
	return cuts
}

func recordingChannels(rec Recording) Channels {
	chans := append([]int(nil), rec.ChannelIDs...)
	if len(chans) == 0 {
		for _, src := range rec.Sources {
			chans = append(chans, src.Channels...)
		}
	}
	if len(chans) == 0 {
		chans = []int{0}
	}
	sort.Ints(chans)
	return chans
}

// Decompose extracts all supervisions from a cut manifest, shifted back into
// recording coordinates.
func Decompose(cuts []AnyCut) []Supervision {
	var sups []Supervision
	for _, entry := range cuts {
		switch {
		case entry.Mono != nil:
			for _, sup := range entry.Mono.Supervisions {
				sups = append(sups, sup.WithOffset(entry.Mono.Start))
			}
		case entry.Mixed != nil:
			for _, track := range entry.Mixed.Tracks {
				for _, sup := range track.Cut.Supervisions {
					sups = append(sups, sup.WithOffset(track.Cut.Start+track.Offset))
				}
			}
		}
	}
	return sups
}
