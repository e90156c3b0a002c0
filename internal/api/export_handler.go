package api

import (
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/reelwright/reelwright/internal/export"
)

// downloadExportHandler returns the export as the response body.
func downloadExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		d, comp, err := cfg.Drafts.Compose(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		body, err := export.Render(f, comp, d.Name)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(d.Name, f)}))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

// writeExportHandler writes the export into a local directory. Without an
// output_dir the configured export directory is used.
func writeExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if !decodeBody(w, r, &req) {
			return
		}

		d, comp, err := cfg.Drafts.Compose(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}

		if req.OutputDir == "" {
			if cfg.ExportDir == "" {
				WriteError(w, http.StatusBadRequest, "output_dir is required", "BAD_REQUEST")
				return
			}
			if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
				writeServiceError(w, cfg.Logger, err)
				return
			}
			req.OutputDir = cfg.ExportDir
		}
		if req.Name == "" {
			req.Name = d.Name
		}

		resp, err := export.WriteFile(req, comp)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
