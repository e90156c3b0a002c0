package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/reelwright/reelwright/internal/article"
	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/export"
	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/preview"
	"github.com/reelwright/reelwright/internal/render"
	"github.com/reelwright/reelwright/internal/templates"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{drafts.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{platform.ErrUnknownPlatform, http.StatusBadRequest, "UNKNOWN_PLATFORM"},
	{platform.ErrUnmappedRatio, http.StatusBadRequest, "UNMAPPED_RATIO"},
	{composer.ErrRatioNotAllowed, http.StatusBadRequest, "RATIO_NOT_ALLOWED"},
	{templates.ErrUnknownTemplate, http.StatusBadRequest, "UNKNOWN_TEMPLATE"},
	{export.ErrUnknownFormat, http.StatusBadRequest, "UNKNOWN_FORMAT"},
	{export.ErrInvalidOutputDir, http.StatusBadRequest, "INVALID_OUTPUT_DIR"},
	{article.ErrNoContent, http.StatusUnprocessableEntity, "NO_ARTICLE_CONTENT"},
	{preview.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
	{preview.ErrUnsatisfiable, http.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE"},
	{drafts.ErrBusy, http.StatusConflict, "DRAFT_BUSY"},
	{drafts.ErrStaleRender, http.StatusConflict, "STALE_RENDER"},
}

// writeServiceError maps err onto a status and code. Unrecognized errors are
// logged and reported as 500, except render engine failures which are 502.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			WriteError(w, ec.status, err.Error(), ec.code)
			return
		}
	}

	var rerr *render.RenderError
	if errors.As(err, &rerr) {
		WriteError(w, http.StatusBadGateway, err.Error(), "RENDER_ENGINE_ERROR")
		return
	}

	if logger != nil {
		logger.Error("request failed", "error", err)
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}
