package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reelwright/reelwright/internal/timeline"
)

// GenerateSRT renders the overlay track as SubRip cues ordered by start time.
func GenerateSRT(s timeline.Schedule) string {
	var b strings.Builder
	for i, o := range cues(s.Overlays) {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			cueTime(o.FromFrame, s.FPS, ','),
			cueTime(o.EndFrame(), s.FPS, ','),
			o.Text,
		)
	}
	return b.String()
}

// GenerateVTT renders the overlay track as WebVTT.
func GenerateVTT(s timeline.Schedule) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, o := range cues(s.Overlays) {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			cueTime(o.FromFrame, s.FPS, '.'),
			cueTime(o.EndFrame(), s.FPS, '.'),
			o.Text,
		)
	}
	return b.String()
}

// cues drops blank overlays and orders the rest by start frame. Overlays that
// start together keep their stacking order.
func cues(overlays []timeline.Overlay) []timeline.Overlay {
	out := make([]timeline.Overlay, 0, len(overlays))
	for _, o := range overlays {
		if strings.TrimSpace(o.Text) == "" {
			continue
		}
		o = o.Normalize()
		o.Text = cueText(o.Text)
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FromFrame < out[j].FromFrame
	})
	return out
}

// cueText flattens text onto one line (a blank line would end the cue early)
// and breaks up the "-->" timing arrow, which readers take as a cue header.
func cueText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	for strings.Contains(text, "-->") {
		text = strings.ReplaceAll(text, "-->", "->")
	}
	return text
}

func cueTime(frame, fps int, sep byte) string {
	if fps <= 0 {
		fps = timeline.FPS
	}
	ms := int64(frame) * 1000 / int64(fps)
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	sec := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, sec, sep, ms%1000)
}
