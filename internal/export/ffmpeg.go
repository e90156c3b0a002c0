package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/timeline"
)

var ErrInvalidCanvas = errors.New("composition has no canvas size")

const (
	overlayFontSize = 56
	overlayMargin   = 24
)

// Plan is an ffmpeg invocation that renders a composition. It is handed to
// the render engine as data and never run locally.
type Plan struct {
	Output string   `json:"output"`
	Args   []string `json:"args"`
}

// Command is the plan as a single shell-quoted line.
func (p Plan) Command() string {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, "ffmpeg")
	for _, a := range p.Args {
		if a == "" || strings.ContainsAny(a, " \t'\"\\;()[]$`&|<>*?") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// BuildPlan lays out the filter graph for comp: every clip contain-fitted and
// padded onto a black canvas, concatenated in schedule order, then one
// drawtext per overlay enabled over its frame window and anchored to the
// bottom of the safe area. A composition without clips renders its overlays
// over solid black for the schedule's length.
func BuildPlan(comp *composer.Composition, output string) (*Plan, error) {
	if comp.Width <= 0 || comp.Height <= 0 {
		return nil, ErrInvalidCanvas
	}
	s := comp.Schedule
	fps := s.FPS
	if fps <= 0 {
		fps = timeline.FPS
	}

	var video *ffmpeg.Stream
	if len(s.Clips) == 0 {
		src := fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s",
			comp.Width, comp.Height, fps, seconds(s.TotalFrames, fps))
		video = ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"})
	} else {
		segments := make([]*ffmpeg.Stream, 0, len(s.Clips))
		for _, e := range s.Clips {
			segments = append(segments, clipSegment(e, comp.Width, comp.Height, fps))
		}
		video = segments[0]
		if len(segments) > 1 {
			video = ffmpeg.Concat(segments)
		}
	}

	area := comp.SafeArea
	if area.Width <= 0 || area.Height <= 0 {
		area.X, area.Y, area.Width, area.Height = 0, 0, comp.Width, comp.Height
	}
	baseline := area.Y + area.Height - overlayMargin

	for _, o := range s.Overlays {
		if strings.TrimSpace(o.Text) == "" {
			continue
		}
		video = video.Filter("drawtext", ffmpeg.Args{}, ffmpeg.KwArgs{
			"text":       o.Text,
			"enable":     fmt.Sprintf("between(n,%d,%d)", o.FromFrame, o.EndFrame()-1),
			"x":          fmt.Sprintf("%d+(%d-text_w)/2", area.X, area.Width),
			"y":          fmt.Sprintf("%d-text_h", baseline),
			"fontsize":   overlayFontSize,
			"fontcolor":  "white",
			"box":        1,
			"boxcolor":   "black",
			"boxborderw": 12,
		})
	}

	out := video.Output(output, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"r":        fps,
		"frames:v": s.TotalFrames,
	}).OverWriteOutput()

	return &Plan{Output: output, Args: out.GetArgs()}, nil
}

func clipSegment(e timeline.Entry, width, height, fps int) *ffmpeg.Stream {
	in := ffmpeg.KwArgs{"t": seconds(e.DurationInFrames(), fps)}
	if e.Clip.Kind == timeline.KindImage {
		in["loop"] = 1
	}
	return ffmpeg.Input(e.Clip.Source, in).
		Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w":                          width,
			"h":                          height,
			"force_original_aspect_ratio": "decrease",
		}).
		Filter("pad", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w":     width,
			"h":     height,
			"x":     "(ow-iw)/2",
			"y":     "(oh-ih)/2",
			"color": "black",
		}).
		Filter("setsar", ffmpeg.Args{}, ffmpeg.KwArgs{"sar": 1}).
		Filter("fps", ffmpeg.Args{}, ffmpeg.KwArgs{"fps": fps})
}

func seconds(frames, fps int) string {
	return strconv.FormatFloat(float64(frames)/float64(fps), 'f', 3, 64)
}
