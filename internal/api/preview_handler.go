package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelwright/reelwright/internal/logging"
	"github.com/reelwright/reelwright/internal/preview"
	"github.com/reelwright/reelwright/internal/timeline"
)

// previewHandler streams one sample per line. With realtime=1 lines are paced
// at the schedule's frame rate; the stream ends when the range has played or
// the client disconnects. loop=1 replays the range until the client goes away
// and is always paced.
func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, comp, err := cfg.Drafts.Compose(r.Context(), id)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		q := r.URL.Query()
		rng, err := preview.ParseFrameRange(q.Get("frames"), comp.Schedule.TotalFrames)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)

		flusher, _ := w.(http.Flusher)
		enc := json.NewEncoder(w)
		sink := func(ctx context.Context, s timeline.Sample) error {
			if err := enc.Encode(s); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		}

		loop := q.Get("loop") == "1"
		if q.Get("realtime") != "1" && !loop {
			for f := rng.Start; f <= rng.End; f++ {
				if r.Context().Err() != nil {
					return
				}
				if err := sink(r.Context(), timeline.SampleFrame(comp.Schedule, f)); err != nil {
					return
				}
			}
			return
		}

		requestID, _ := r.Context().Value(RequestIDKey).(string)
		logger := logging.WithDraftID(logging.WithRequestID(cfg.Logger, requestID), id)

		opts := []preview.Option{
			preview.WithInterval(cfg.PreviewInterval),
			preview.WithLogger(logger),
		}
		if loop {
			opts = append(opts, preview.WithLoop())
		}
		player := preview.NewPlayer(comp.Schedule, opts...)
		if err := player.Play(r.Context(), rng, sink); err != nil && r.Context().Err() == nil {
			logger.Warn("preview stream ended early", "error", err)
		}
	}
}
