// Package timeline lays clips and text overlays out on a frame-indexed
// schedule and samples that schedule one frame at a time.
//
// Everything here is a pure function of its inputs: no shared state, no I/O,
// no errors. Malformed input is defaulted, never rejected, so a partially
// specified composition can always be previewed.
package timeline

import "math"

const (
	// FPS is the fixed frame rate of every schedule.
	FPS = 30

	// DefaultClipFrames applies to clips without a positive duration (5s).
	DefaultClipFrames = 150

	// DefaultOverlayFrames applies to overlays without a positive duration (3s).
	DefaultOverlayFrames = 90

	// FallbackTotalFrames is the length of a schedule with no clips (10s).
	FallbackTotalFrames = 300

	// MaxDurationFrames caps any single duration or frame offset. Larger
	// values are clamped so frame arithmetic cannot wrap.
	MaxDurationFrames = math.MaxInt32

	// Default portrait canvas.
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

type Fit string

// FitContain scales the asset to fit inside the frame without cropping.
const FitContain Fit = "contain"

// Clip is one visual segment. It has no start time of its own; its position
// follows from the durations of the clips before it.
type Clip struct {
	Source           string `json:"source"`
	Kind             Kind   `json:"kind"`
	DurationInFrames int    `json:"durationInFrames,omitempty"`
	Fit              Fit    `json:"fit,omitempty"`
}

// Normalize returns the clip with documented defaults applied.
func (c Clip) Normalize() Clip {
	if c.DurationInFrames <= 0 {
		c.DurationInFrames = DefaultClipFrames
	}
	c.DurationInFrames = min(c.DurationInFrames, MaxDurationFrames)
	if c.Kind != KindImage && c.Kind != KindVideo {
		c.Kind = KindVideo
	}
	c.Fit = FitContain
	return c
}

// Overlay is a timed text annotation drawn above the clip track.
type Overlay struct {
	Text             string `json:"text"`
	FromFrame        int    `json:"fromFrame"`
	DurationInFrames int    `json:"durationInFrames,omitempty"`
}

// Normalize returns the overlay with documented defaults applied.
func (o Overlay) Normalize() Overlay {
	if o.FromFrame < 0 {
		o.FromFrame = 0
	}
	if o.DurationInFrames <= 0 {
		o.DurationInFrames = DefaultOverlayFrames
	}
	o.FromFrame = min(o.FromFrame, MaxDurationFrames)
	o.DurationInFrames = min(o.DurationInFrames, MaxDurationFrames)
	return o
}

// EndFrame is the first frame after the overlay's window. It saturates at
// math.MaxInt.
func (o Overlay) EndFrame() int {
	if o.DurationInFrames > math.MaxInt-o.FromFrame {
		return math.MaxInt
	}
	return o.FromFrame + o.DurationInFrames
}

// Contains reports whether frame falls in [FromFrame, EndFrame).
func (o Overlay) Contains(frame int) bool {
	return frame >= o.FromFrame && frame < o.EndFrame()
}

// Entry places one clip on the schedule over [StartFrame, EndFrame).
type Entry struct {
	Index      int  `json:"index"`
	Clip       Clip `json:"clip"`
	StartFrame int  `json:"startFrame"`
	EndFrame   int  `json:"endFrame"`
}

func (e Entry) DurationInFrames() int {
	return e.EndFrame - e.StartFrame
}

func (e Entry) Contains(frame int) bool {
	return frame >= e.StartFrame && frame < e.EndFrame
}

// Schedule is the computed timeline. Clip entries tile [0, TotalFrames)
// exactly, in input order; overlays keep input order.
type Schedule struct {
	FPS         int       `json:"fps"`
	TotalFrames int       `json:"totalFrames"`
	Clips       []Entry   `json:"clips"`
	Overlays    []Overlay `json:"overlays"`
}

// DurationSeconds is TotalFrames expressed in seconds.
func (s Schedule) DurationSeconds() float64 {
	fps := s.FPS
	if fps <= 0 {
		fps = FPS
	}
	return float64(s.TotalFrames) / float64(fps)
}

// SecondsToFrames converts a duration in seconds to whole frames, rounding to
// the nearest frame.
func SecondsToFrames(seconds float64) int {
	f := seconds * FPS
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
