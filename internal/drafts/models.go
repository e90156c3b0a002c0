package drafts

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/timeline"
)

var (
	ErrNotFound    = errors.New("draft not found")
	ErrBusy        = errors.New("draft is being rendered")
	ErrStaleRender = errors.New("render result does not match the draft's current render")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitting Status = "submitting"
	StatusRendering  Status = "rendering"
	StatusFailed     Status = "failed"
)

// Locked reports whether the draft is owned by the render engine.
func (s Status) Locked() bool {
	return s == StatusSubmitting || s == StatusRendering
}

const DefaultName = "Untitled draft"

type Draft struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Platform    string             `json:"platform,omitempty"`
	Ratio       string             `json:"ratio,omitempty"`
	TemplateKey string             `json:"template_key,omitempty"`
	ArticleURL  string             `json:"article_url,omitempty"`
	Clips       []timeline.Clip    `json:"clips"`
	Overlays    []timeline.Overlay `json:"overlays"`
	Status      Status             `json:"status"`
	RenderID    string             `json:"render_id,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Request is the composition request the draft describes.
func (d *Draft) Request() composer.Request {
	return composer.Request{
		Platform: d.Platform,
		Ratio:    d.Ratio,
		Clips:    d.Clips,
		Overlays: d.Overlays,
	}
}

// Composition is the editable part of a draft.
type Composition struct {
	Platform string             `json:"platform,omitempty"`
	Ratio    string             `json:"ratio,omitempty"`
	Clips    []timeline.Clip    `json:"clips"`
	Overlays []timeline.Overlay `json:"overlays"`
}

func NewID() string {
	return uuid.NewString()
}
