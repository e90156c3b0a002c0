package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/timeline"
)

func createDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in drafts.CreateInput
		if !decodeBody(w, r, &in) {
			return
		}
		d, err := cfg.Drafts.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, d)
	}
}

func listDraftsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", "BAD_REQUEST")
				return
			}
			limit = n
		}

		list, err := cfg.Drafts.List(r.Context(), limit)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		if list == nil {
			list = []*drafts.Draft{}
		}
		WriteJSON(w, http.StatusOK, DraftsResponse{Drafts: list})
	}
}

func getDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := cfg.Drafts.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, d)
	}
}

func deleteDraftHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Drafts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func replaceCompositionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c drafts.Composition
		if !decodeBody(w, r, &c) {
			return
		}
		d, err := cfg.Drafts.ReplaceComposition(r.Context(), chi.URLParam(r, "id"), c)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, d)
	}
}

func draftFromArticleHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in drafts.FromArticleInput
		if !decodeBody(w, r, &in) {
			return
		}
		in.URL = strings.TrimSpace(in.URL)
		if !strings.HasPrefix(in.URL, "http://") && !strings.HasPrefix(in.URL, "https://") {
			WriteError(w, http.StatusBadRequest, "url must be an http or https URL", "BAD_REQUEST")
			return
		}

		d, err := cfg.Drafts.FromArticle(r.Context(), in)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, d)
	}
}

func scheduleHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, comp, err := cfg.Drafts.Compose(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, comp)
	}
}

func frameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, err := strconv.Atoi(chi.URLParam(r, "frame"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "frame must be an integer", "BAD_REQUEST")
			return
		}

		_, comp, err := cfg.Drafts.Compose(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, timeline.SampleFrame(comp.Schedule, frame))
	}
}

func renderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := cfg.Drafts.Render(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, d)
	}
}

func renderResultHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res drafts.RenderResult
		if !decodeBody(w, r, &res) {
			return
		}
		if res.RenderID == "" {
			WriteError(w, http.StatusBadRequest, "render_id is required", "BAD_REQUEST")
			return
		}

		d, err := cfg.Drafts.CompleteRender(r.Context(), chi.URLParam(r, "id"), res)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, d)
	}
}
