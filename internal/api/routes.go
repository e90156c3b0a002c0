package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelwright/reelwright/internal/config"
	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/preview"
	"github.com/reelwright/reelwright/internal/templates"
	"github.com/reelwright/reelwright/internal/timeline"
)

const maxBodyBytes = 1 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackGuard())
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Logger))

		r.Get("/platforms", listPlatformsHandler())
		r.Get("/platforms/groups", platformGroupsHandler())
		r.Get("/platforms/{key}", getPlatformHandler())
		r.Get("/ratios/{ratio}", getRatioHandler())

		r.Get("/templates", listTemplatesHandler(cfg))
		r.Get("/templates/{key}", getTemplateHandler(cfg))

		r.Post("/compositions", composeHandler(cfg))
		r.Post("/compositions/sample", sampleHandler(cfg))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", createDraftHandler(cfg))
			r.Get("/", listDraftsHandler(cfg))
			r.Post("/from-article", draftFromArticleHandler(cfg))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getDraftHandler(cfg))
				r.Delete("/", deleteDraftHandler(cfg))
				r.Put("/composition", replaceCompositionHandler(cfg))
				r.Get("/schedule", scheduleHandler(cfg))
				r.Get("/frames/{frame}", frameHandler(cfg))
				r.Get("/preview", previewHandler(cfg))
				r.Get("/export", downloadExportHandler(cfg))
				r.Post("/export", writeExportHandler(cfg))
				r.Post("/render", renderHandler(cfg))
				r.Post("/render/result", renderResultHandler(cfg))
			})
		})
	})

	return r
}

// decodeBody reads a JSON body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func listPlatformsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, PlatformsResponse{Platforms: platform.List()})
	}
}

func platformGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var keys []string
		for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			WriteError(w, http.StatusBadRequest, "keys is required", "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, GroupsResponse{Groups: platform.GroupByRatio(keys)})
	}
}

func getPlatformHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := platform.Lookup(chi.URLParam(r, "key"))
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, p)
	}
}

func getRatioHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ratio := chi.URLParam(r, "ratio")
		d, err := platform.ResolveDimensions(ratio)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, RatioResponse{Ratio: ratio, Dimensions: d})
	}
}

func listTemplatesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := templates.List()
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		resp := TemplatesResponse{Templates: make([]TemplateSummary, len(list))}
		for i, t := range list {
			resp.Templates[i] = TemplateToSummary(t)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getTemplateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := templates.Get(chi.URLParam(r, "key"))
		if err != nil {
			if errors.Is(err, templates.ErrUnknownTemplate) {
				WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
				return
			}
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, t)
	}
}

func composeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SampleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		comp, err := cfg.Composer.Compose(r.Context(), req.Request)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, comp)
	}
}

func sampleHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SampleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.Frames) > preview.MaxBatchFrames {
			WriteError(w, http.StatusBadRequest, "too many frames requested", "BAD_REQUEST")
			return
		}

		comp, err := cfg.Composer.Compose(r.Context(), req.Request)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		resp := SampleResponse{Composition: comp}
		switch {
		case len(req.Frames) > 0:
			resp.Samples = make([]timeline.Sample, len(req.Frames))
			for i, f := range req.Frames {
				resp.Samples[i] = timeline.SampleFrame(comp.Schedule, f)
			}
		case req.Range != "":
			rng, err := preview.ParseFrameRange(req.Range, comp.Schedule.TotalFrames)
			if err != nil {
				writeServiceError(w, cfg.Logger, err)
				return
			}
			resp.Samples = preview.Frames(comp.Schedule, rng)
			if sampled := len(resp.Samples); sampled < rng.Len() {
				resp.Truncated = true
				resp.Next = preview.Range{Start: rng.Start + sampled, End: rng.End}.String()
			}
		default:
			resp.Samples = []timeline.Sample{timeline.SampleFrame(comp.Schedule, 0)}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
