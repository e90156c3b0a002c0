package api

import (
	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/platform"
	"github.com/reelwright/reelwright/internal/templates"
	"github.com/reelwright/reelwright/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type PlatformsResponse struct {
	Platforms []platform.Entry `json:"platforms"`
}

type GroupsResponse struct {
	Groups []platform.RatioGroup `json:"groups"`
}

type RatioResponse struct {
	Ratio string `json:"ratio"`
	platform.Dimensions
}

type TemplatesResponse struct {
	Templates []TemplateSummary `json:"templates"`
}

type TemplateSummary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SceneCount   int    `json:"scene_count"`
	TotalSeconds int    `json:"total_seconds"`
}

func TemplateToSummary(t templates.Template) TemplateSummary {
	return TemplateSummary{
		Key:          t.Key,
		Name:         t.Name,
		Description:  t.Description,
		SceneCount:   len(t.Scenes),
		TotalSeconds: t.TotalSeconds(),
	}
}

// SampleRequest composes and samples in one call. Frames lists individual
// frames; Range takes "a-b" syntax. With neither, frame 0 is sampled.
type SampleRequest struct {
	composer.Request
	Frames []int  `json:"frames,omitempty"`
	Range  string `json:"range,omitempty"`
}

// SampleResponse carries at most preview.MaxBatchFrames samples. When a range
// is longer, Truncated is set and Next is the range holding the remainder.
type SampleResponse struct {
	Composition *composer.Composition `json:"composition"`
	Samples     []timeline.Sample     `json:"samples"`
	Truncated   bool                  `json:"truncated"`
	Next        string                `json:"next,omitempty"`
}

type DraftsResponse struct {
	Drafts []*drafts.Draft `json:"drafts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
