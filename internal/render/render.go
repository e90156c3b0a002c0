// Package render hands finished compositions to the external rendering
// engine. Nothing here encodes video.
package render

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/export"
)

// Job is the payload the engine receives.
type Job struct {
	DraftID     string                `json:"draft_id"`
	Name        string                `json:"name"`
	Composition *composer.Composition `json:"composition"`
	Plan        *export.Plan          `json:"plan,omitempty"`
}

// Receipt acknowledges an accepted job.
type Receipt struct {
	RenderID string `json:"render_id"`
	Status   string `json:"status"`
}

type Client interface {
	Submit(ctx context.Context, job Job) (*Receipt, error)
}

// StubClient accepts every job without contacting anything. It stands in
// when no engine URL is configured.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) Submit(ctx context.Context, job Job) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := "stub-" + uuid.NewString()
	if c.logger != nil {
		c.logger.Info("render stub: job accepted", "draft_id", job.DraftID, "render_id", id)
	}
	return &Receipt{RenderID: id, Status: "queued"}, nil
}
