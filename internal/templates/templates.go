// Package templates holds the storyboard blueprints drafts are seeded from and
// the rule that lays a filled storyboard out as clips and overlays.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reelwright/reelwright/internal/timeline"
)

//go:embed templates.yaml
var templatesYAML []byte

var ErrUnknownTemplate = errors.New("unknown template")

const (
	Listicle      = "listicle"
	ProductReview = "product_review"
	HowTo         = "how_to"
	News          = "news"
	Comparison    = "comparison"
	Testimonial   = "testimonial"
)

const (
	RoleHook       = "hook"
	RoleProblem    = "problem"
	RoleSolution   = "solution"
	RoleProof      = "proof"
	RolePoint      = "point"
	RoleStep       = "step"
	RoleComparison = "comparison"
	RoleCTA        = "cta"
)

// DefaultSceneSeconds applies to scenes without a positive duration.
const DefaultSceneSeconds = 5

// SceneSpec is one slot of a blueprint.
type SceneSpec struct {
	Role         string `yaml:"role" json:"role"`
	Duration     int    `yaml:"duration" json:"duration"`
	OverlayStyle string `yaml:"overlayStyle" json:"overlay_style"`
	Position     string `yaml:"position" json:"position"`
	Hint         string `yaml:"hint" json:"hint"`
}

type Template struct {
	Key         string      `yaml:"key" json:"key"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	MusicMood   string      `yaml:"musicMood" json:"music_mood"`
	VoicePacing string      `yaml:"voicePacing" json:"voice_pacing"`
	Scenes      []SceneSpec `yaml:"scenes" json:"scenes"`
}

// TotalSeconds sums the scene durations.
func (t Template) TotalSeconds() int {
	total := 0
	for _, s := range t.Scenes {
		total += s.Duration
	}
	return total
}

func (t Template) clone() Template {
	t.Scenes = append([]SceneSpec(nil), t.Scenes...)
	return t
}

var (
	loadOnce sync.Once
	library  []Template
	loadErr  error
)

func load() ([]Template, error) {
	loadOnce.Do(func() {
		var parsed []Template
		if err := yaml.Unmarshal(templatesYAML, &parsed); err != nil {
			loadErr = fmt.Errorf("parse templates: %w", err)
			return
		}
		seen := make(map[string]bool, len(parsed))
		for _, t := range parsed {
			if t.Key == "" || seen[t.Key] {
				loadErr = fmt.Errorf("parse templates: missing or duplicate key %q", t.Key)
				return
			}
			seen[t.Key] = true
		}
		library = parsed
	})
	return library, loadErr
}

// List returns every template in library order.
func List() ([]Template, error) {
	lib, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Template, len(lib))
	for i, t := range lib {
		out[i] = t.clone()
	}
	return out, nil
}

// Get returns a copy of the template registered under key.
func Get(key string) (Template, error) {
	lib, err := load()
	if err != nil {
		return Template{}, err
	}
	for _, t := range lib {
		if t.Key == key {
			return t.clone(), nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
}

// Analysis is what is known about a piece of source content when picking a
// template for it.
type Analysis struct {
	ArticleType   string `json:"article_type,omitempty"`
	HasProduct    bool   `json:"has_product"`
	HasSteps      bool   `json:"has_steps"`
	HasComparison bool   `json:"has_comparison"`
	HasQuotes     bool   `json:"has_quotes"`
}

var articleTypes = map[string]string{
	"listicle":     Listicle,
	"how_to":       HowTo,
	"tutorial":     HowTo,
	"comparison":   Comparison,
	"news":         News,
	"announcement": News,
	"review":       ProductReview,
	"testimonial":  Testimonial,
	"case_study":   Testimonial,
}

// Match picks a template key. A recognised article type wins; otherwise the
// content signals are checked in order, and listicle is the fallback.
func Match(a Analysis) string {
	if key, ok := articleTypes[a.ArticleType]; ok {
		return key
	}
	switch {
	case a.HasSteps:
		return HowTo
	case a.HasComparison:
		return Comparison
	case a.HasQuotes:
		return Testimonial
	case a.HasProduct:
		return ProductReview
	}
	return Listicle
}

// Scene is a filled storyboard slot.
type Scene struct {
	Role            string        `json:"role"`
	Headline        string        `json:"headline"`
	DurationSeconds float64       `json:"duration_seconds"`
	Asset           string        `json:"asset,omitempty"`
	AssetKind       timeline.Kind `json:"asset_kind,omitempty"`
}

// Frames is the scene length in frames, defaulting to DefaultSceneSeconds.
func (s Scene) Frames() int {
	secs := s.DurationSeconds
	if secs <= 0 {
		secs = DefaultSceneSeconds
	}
	return timeline.SecondsToFrames(secs)
}

// BuildTimeline lays scenes out back to back. Each scene contributes a clip
// when it has an asset and a headline overlay when it has a headline; both
// span the scene. The cursor advances for every scene, so a scene without an
// asset leaves the clip track short of the overlay track.
func BuildTimeline(scenes []Scene) ([]timeline.Clip, []timeline.Overlay) {
	clips := make([]timeline.Clip, 0, len(scenes))
	overlays := make([]timeline.Overlay, 0, len(scenes))

	cursor := 0
	for _, s := range scenes {
		frames := s.Frames()
		if s.Asset != "" {
			kind := s.AssetKind
			if kind == "" {
				kind = timeline.KindImage
			}
			clips = append(clips, timeline.Clip{
				Source:           s.Asset,
				Kind:             kind,
				DurationInFrames: frames,
				Fit:              timeline.FitContain,
			})
		}
		if s.Headline != "" {
			overlays = append(overlays, timeline.Overlay{
				Text:             s.Headline,
				FromFrame:        cursor,
				DurationInFrames: frames,
			})
		}
		cursor += frames
	}
	return clips, overlays
}
