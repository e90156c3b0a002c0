// Package composer turns a composition request into a platform-shaped
// schedule: canvas size, safe area and duration limit come from the platform
// table, layout comes from the timeline package.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/timeline"
)

var ErrRatioNotAllowed = errors.New("ratio not allowed for platform")

// Request is everything a caller may specify about a composition. All fields
// except Clips and Overlays are optional.
type Request struct {
	Platform string             `json:"platform,omitempty"`
	Ratio    string             `json:"ratio,omitempty"`
	Width    int                `json:"width,omitempty"`
	Height   int                `json:"height,omitempty"`
	Clips    []timeline.Clip    `json:"clips"`
	Overlays []timeline.Overlay `json:"overlays"`
}

// Composition is a schedule bound to a canvas.
type Composition struct {
	Platform  string             `json:"platform,omitempty"`
	Ratio     string             `json:"ratio,omitempty"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	SafeZones platform.SafeZones `json:"safe_zones"`
	SafeArea  platform.Rect      `json:"safe_area"`
	MaxFrames int                `json:"max_frames,omitempty"`
	Truncated bool               `json:"truncated"`
	Schedule  timeline.Schedule  `json:"schedule"`
}

type Composer interface {
	Compose(ctx context.Context, req Request) (*Composition, error)
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) Compose(ctx context.Context, req Request) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comp := &Composition{Ratio: req.Ratio}
	clips, overlays := req.Clips, req.Overlays

	if req.Platform == "" {
		dims, err := canvasFor(req)
		if err != nil {
			return nil, err
		}
		comp.Width, comp.Height = dims.Width, dims.Height
	} else {
		profile, err := platform.Lookup(req.Platform)
		if err != nil {
			return nil, err
		}
		if comp.Ratio == "" {
			comp.Ratio = profile.DefaultRatio
		}
		if !profile.AllowsRatio(comp.Ratio) {
			return nil, fmt.Errorf("%w: %s does not allow %q", ErrRatioNotAllowed, profile.Key, comp.Ratio)
		}

		dims := profile.DimensionsFor(comp.Ratio)
		if req.Width > 0 && req.Height > 0 {
			dims = platform.Dimensions{Width: req.Width, Height: req.Height}
		}
		comp.Platform = profile.Key
		comp.Width, comp.Height = dims.Width, dims.Height
		comp.SafeZones = profile.SafeZones
		comp.MaxFrames = profile.MaxDuration * timeline.FPS

		clips, overlays, comp.Truncated = Truncate(clips, overlays, comp.MaxFrames)
		if comp.Truncated && s.logger != nil {
			s.logger.Info("composition truncated",
				"platform", profile.Key,
				"max_frames", comp.MaxFrames,
				"clips_kept", len(clips),
				"clips_requested", len(req.Clips),
			)
		}
	}

	comp.SafeArea = comp.SafeZones.Area(comp.Width, comp.Height)
	comp.Schedule = timeline.Build(clips, overlays)
	return comp, nil
}

func canvasFor(req Request) (platform.Dimensions, error) {
	if req.Width > 0 && req.Height > 0 {
		return platform.Dimensions{Width: req.Width, Height: req.Height}, nil
	}
	if req.Ratio != "" {
		return platform.ResolveDimensions(req.Ratio)
	}
	return platform.Dimensions{Width: timeline.DefaultWidth, Height: timeline.DefaultHeight}, nil
}

// Truncate fits clips and overlays into maxFrames. Clips keep their order; the
// clip crossing the limit is shortened and the rest are dropped. Overlays that
// start at or after the limit are dropped. A non-positive maxFrames disables
// the limit.
func Truncate(clips []timeline.Clip, overlays []timeline.Overlay, maxFrames int) ([]timeline.Clip, []timeline.Overlay, bool) {
	if maxFrames <= 0 {
		return clips, overlays, false
	}

	truncated := false
	keptClips := make([]timeline.Clip, 0, len(clips))
	used := 0
	for _, c := range clips {
		d := c.Normalize().DurationInFrames
		if d > maxFrames-used {
			truncated = true
			if remaining := maxFrames - used; remaining > 0 {
				c.DurationInFrames = remaining
				keptClips = append(keptClips, c)
			}
			break
		}
		keptClips = append(keptClips, c)
		used += d
	}

	keptOverlays := make([]timeline.Overlay, 0, len(overlays))
	for _, o := range overlays {
		if o.Normalize().FromFrame >= maxFrames {
			truncated = true
			continue
		}
		keptOverlays = append(keptOverlays, o)
	}
	return keptClips, keptOverlays, truncated
}
