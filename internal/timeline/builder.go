package timeline

import "math"

// Build lays clips end to end starting at frame 0 and passes overlays through
// with their defaults applied. An empty clip list yields FallbackTotalFrames so
// a preview always has a non-zero length. Clips that would push the total past
// math.MaxInt are left off the schedule.
func Build(clips []Clip, overlays []Overlay) Schedule {
	entries := make([]Entry, 0, len(clips))
	cursor := 0
	for i, c := range clips {
		c = c.Normalize()
		if c.DurationInFrames > math.MaxInt-cursor {
			break
		}
		start := cursor
		cursor += c.DurationInFrames
		entries = append(entries, Entry{
			Index:      i,
			Clip:       c,
			StartFrame: start,
			EndFrame:   cursor,
		})
	}

	total := cursor
	if total == 0 {
		total = FallbackTotalFrames
	}

	normalized := make([]Overlay, len(overlays))
	for i, o := range overlays {
		normalized[i] = o.Normalize()
	}

	return Schedule{
		FPS:         FPS,
		TotalFrames: total,
		Clips:       entries,
		Overlays:    normalized,
	}
}
