package preview

import (
	"context"
	"log/slog"
	"time"

	"github.com/reelwright/reelwright/internal/timeline"
)

// MaxBatchFrames caps a single Frames call.
const MaxBatchFrames = 3000

// Frames samples every frame in r. Ranges longer than MaxBatchFrames are cut.
func Frames(s timeline.Schedule, r Range) []timeline.Sample {
	n := min(r.Len(), MaxBatchFrames)
	if n <= 0 {
		return []timeline.Sample{}
	}
	out := make([]timeline.Sample, 0, n)
	for f := r.Start; f < r.Start+n; f++ {
		out = append(out, timeline.SampleFrame(s, f))
	}
	return out
}

// Sink receives one sample per tick. Returning an error stops playback.
type Sink func(ctx context.Context, sample timeline.Sample) error

// FrameInterval is one frame at timeline.FPS.
var FrameInterval = time.Second / timeline.FPS

type Player struct {
	schedule timeline.Schedule
	interval time.Duration
	loop     bool
	logger   *slog.Logger
}

type Option func(*Player)

// WithInterval overrides the tick period.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLoop restarts from the range start after the last frame.
func WithLoop() Option {
	return func(p *Player) { p.loop = true }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

func NewPlayer(s timeline.Schedule, opts ...Option) *Player {
	p := &Player{schedule: s, interval: FrameInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play hands sink one sample per tick for each frame in r. It returns nil
// once the range has played, the sink's error if it fails, or the context's
// error when cancelled. Frames are never skipped: a slow sink slows playback.
func (p *Player) Play(ctx context.Context, r Range, sink Sink) error {
	if r.Len() <= 0 {
		return nil
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	frame := r.Start
	played := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink(ctx, timeline.SampleFrame(p.schedule, frame)); err != nil {
			if p.logger != nil {
				p.logger.Debug("playback stopped by sink", "frame", frame, "error", err)
			}
			return err
		}
		played++

		frame++
		if frame > r.End {
			if !p.loop {
				return nil
			}
			frame = r.Start
		}

		select {
		case <-ctx.Done():
			if p.logger != nil {
				p.logger.Debug("playback cancelled", "frame", frame, "played", played)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
