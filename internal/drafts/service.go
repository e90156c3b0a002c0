package drafts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reelwright/reelwright/internal/article"
	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/export"
	"github.com/reelwright/reelwright/internal/render"
	"github.com/reelwright/reelwright/internal/templates"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*article.Article, error)
}

type DraftService interface {
	Create(ctx context.Context, in CreateInput) (*Draft, error)
	Get(ctx context.Context, id string) (*Draft, error)
	List(ctx context.Context, limit int) ([]*Draft, error)
	ReplaceComposition(ctx context.Context, id string, c Composition) (*Draft, error)
	Delete(ctx context.Context, id string) error
	Compose(ctx context.Context, id string) (*Draft, *composer.Composition, error)
	FromArticle(ctx context.Context, in FromArticleInput) (*Draft, error)
	Render(ctx context.Context, id string) (*Draft, error)
	CompleteRender(ctx context.Context, id string, res RenderResult) (*Draft, error)
}

type CreateInput struct {
	Name        string `json:"name"`
	TemplateKey string `json:"template_key,omitempty"`
	Composition
}

type FromArticleInput struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Ratio       string `json:"ratio,omitempty"`
	TemplateKey string `json:"template_key,omitempty"`
}

type Service struct {
	repo     Repository
	composer composer.Composer
	fetcher  ArticleFetcher
	renderer render.Client
	logger   *slog.Logger
}

func NewService(repo Repository, comp composer.Composer, fetcher ArticleFetcher, renderer render.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		composer: comp,
		fetcher:  fetcher,
		renderer: renderer,
		logger:   logger,
	}
}

// Create stores a new draft. The composition must be composable: an unknown
// platform or disallowed ratio is rejected here rather than at render time.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Draft, error) {
	return s.create(ctx, in, "")
}

func (s *Service) create(ctx context.Context, in CreateInput, articleURL string) (*Draft, error) {
	if _, err := s.composer.Compose(ctx, in.requestFor()); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultName
	}

	now := time.Now().UTC()
	d := &Draft{
		ID:          NewID(),
		Name:        name,
		Platform:    in.Platform,
		Ratio:       in.Ratio,
		TemplateKey: in.TemplateKey,
		ArticleURL:  articleURL,
		Clips:       in.Clips,
		Overlays:    in.Overlays,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("draft created", "draft_id", d.ID, "platform", d.Platform, "clips", len(d.Clips), "overlays", len(d.Overlays))
	}
	return d, nil
}

func (in CreateInput) requestFor() composer.Request {
	return composer.Request{
		Platform: in.Platform,
		Ratio:    in.Ratio,
		Clips:    in.Clips,
		Overlays: in.Overlays,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Draft, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]*Draft, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.List(ctx, limit)
}

// ReplaceComposition swaps the draft's tracks and target. Drafts owned by the
// render engine cannot be edited.
func (s *Service) ReplaceComposition(ctx context.Context, id string, c Composition) (*Draft, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status.Locked() {
		return nil, ErrBusy
	}
	if _, err := s.composer.Compose(ctx, CreateInput{Composition: c}.requestFor()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateComposition(ctx, id, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.Status.Locked() {
		return ErrBusy
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Compose(ctx context.Context, id string) (*Draft, *composer.Composition, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comp, err := s.composer.Compose(ctx, d.Request())
	if err != nil {
		return nil, nil, err
	}
	return d, comp, nil
}

// FromArticle fetches an article, picks a template for it (unless one is
// given), fills the storyboard and saves the resulting tracks as a draft.
func (s *Service) FromArticle(ctx context.Context, in FromArticleInput) (*Draft, error) {
	if s.fetcher == nil {
		return nil, errors.New("article import is not configured")
	}

	a, err := s.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}

	key := in.TemplateKey
	if key == "" {
		key = templates.Match(article.Analyze(a))
	}
	tmpl, err := templates.Get(key)
	if err != nil {
		return nil, err
	}

	clips, overlays := templates.BuildTimeline(article.Storyboard(a, tmpl))

	name := in.Name
	if name == "" {
		name = a.Title
	}

	return s.create(ctx, CreateInput{
		Name:        name,
		TemplateKey: tmpl.Key,
		Composition: Composition{
			Platform: in.Platform,
			Ratio:    in.Ratio,
			Clips:    clips,
			Overlays: overlays,
		},
	}, a.URL)
}

// Render composes the draft and hands it to the render engine. The draft is
// marked submitting for the duration of the call, then rendering on success
// or failed with the engine's error.
func (s *Service) Render(ctx context.Context, id string) (*Draft, error) {
	d, comp, err := s.Compose(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status.Locked() {
		return nil, ErrBusy
	}

	plan, err := export.BuildPlan(comp, d.ID+".mp4")
	if err != nil {
		return nil, err
	}

	if err := s.repo.TransitionStatus(ctx, id, []Status{StatusDraft, StatusFailed}, StatusSubmitting, "", ""); err != nil {
		return nil, err
	}

	receipt, err := s.renderer.Submit(ctx, render.Job{
		DraftID:     d.ID,
		Name:        d.Name,
		Composition: comp,
		Plan:        plan,
	})
	if err != nil {
		// the request context may be gone; the status write must still land
		if uerr := s.repo.TransitionStatus(context.WithoutCancel(ctx), id, []Status{StatusSubmitting}, StatusFailed, "", err.Error()); uerr != nil && s.logger != nil {
			s.logger.Error("failed to record render failure", "draft_id", id, "error", uerr)
		}
		if s.logger != nil {
			s.logger.Warn("render submit failed", "draft_id", id, "error", err)
		}
		return nil, fmt.Errorf("submit render: %w", err)
	}

	if err := s.repo.TransitionStatus(ctx, id, []Status{StatusSubmitting}, StatusRendering, receipt.RenderID, ""); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("draft submitted for render", "draft_id", id, "render_id", receipt.RenderID)
	}
	return s.Get(ctx, id)
}

// RenderResult is the engine's report on a job it accepted.
type RenderResult struct {
	RenderID string `json:"render_id"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// CompleteRender releases a rendering draft. A success returns it to draft
// status with the render id kept for reference; a failure records the error.
// Reports for a different render id are ignored with ErrStaleRender.
func (s *Service) CompleteRender(ctx context.Context, id string, res RenderResult) (*Draft, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusRendering || d.RenderID != res.RenderID {
		return nil, ErrStaleRender
	}

	status, msg := StatusDraft, ""
	if res.Failed {
		status, msg = StatusFailed, res.Error
		if msg == "" {
			msg = "render failed"
		}
	}
	if err := s.repo.TransitionStatus(ctx, id, []Status{StatusRendering}, status, res.RenderID, msg); err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, ErrStaleRender
		}
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info("render completed", "draft_id", id, "render_id", res.RenderID, "failed", res.Failed)
	}
	return s.Get(ctx, id)
}
