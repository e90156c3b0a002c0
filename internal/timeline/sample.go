package timeline

import (
	"sort"

	"github.com/reelwright/reelwright/internal/platform"
)

// Layout is the fixed layering rule every sample is painted with.
type Layout struct {
	Background    string `json:"background"`
	Fit           Fit    `json:"fit"`
	OverlayAnchor string `json:"overlayAnchor"`
	OverlayChip   string `json:"overlayChip"`
}

// DefaultLayout: black background, contain-fit clip, bottom-anchored opaque
// text chips above it.
var DefaultLayout = Layout{
	Background:    "#000000",
	Fit:           FitContain,
	OverlayAnchor: "bottom",
	OverlayChip:   "opaque",
}

// Sample is what a render surface paints for a single frame. ActiveOverlays
// are ordered bottom to top.
type Sample struct {
	Frame          int       `json:"frame"`
	ActiveClip     *Entry    `json:"activeClip"`
	ActiveOverlays []Overlay `json:"activeOverlays"`
	Layout         Layout    `json:"layout"`
}

// SampleFrame returns the clip and overlays visible at frame. Frames outside
// [0, TotalFrames) have no active clip.
func SampleFrame(s Schedule, frame int) Sample {
	sample := Sample{
		Frame:          frame,
		ActiveOverlays: []Overlay{},
		Layout:         DefaultLayout,
	}

	if frame >= 0 && frame < s.TotalFrames {
		i := sort.Search(len(s.Clips), func(i int) bool {
			return s.Clips[i].EndFrame > frame
		})
		if i < len(s.Clips) && s.Clips[i].Contains(frame) {
			e := s.Clips[i]
			sample.ActiveClip = &e
		}
	}

	for _, o := range s.Overlays {
		if o.Contains(frame) {
			sample.ActiveOverlays = append(sample.ActiveOverlays, o)
		}
	}
	return sample
}

// ContainRect returns where a srcW x srcH asset lands inside a frameW x frameH
// canvas under contain fit: aspect ratio kept, centered, letterboxed or
// pillarboxed. Unknown source sizes fill the frame.
func ContainRect(srcW, srcH, frameW, frameH int) platform.Rect {
	if srcW <= 0 || srcH <= 0 || frameW <= 0 || frameH <= 0 {
		return platform.Rect{Width: max(frameW, 0), Height: max(frameH, 0)}
	}

	w, h := frameW, frameH
	if srcW*frameH > srcH*frameW {
		h = srcH * frameW / srcW
	} else {
		w = srcW * frameH / srcH
	}
	return platform.Rect{
		X:      (frameW - w) / 2,
		Y:      (frameH - h) / 2,
		Width:  w,
		Height: h,
	}
}
