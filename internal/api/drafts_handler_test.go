package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reelwright/reelwright/internal/article"
	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/export"
	"github.com/reelwright/reelwright/internal/render"
	"github.com/reelwright/reelwright/internal/timeline"
)

func sampleDraftInput() drafts.CreateInput {
	return drafts.CreateInput{
		Name: "Launch teaser",
		Composition: drafts.Composition{
			Platform: "tiktok",
			Clips: []timeline.Clip{
				{Source: "intro.mp4", DurationInFrames: 30},
				{Source: "product.png", Kind: timeline.KindImage, DurationInFrames: 30},
			},
			Overlays: []timeline.Overlay{{Text: "Coming soon", FromFrame: 15, DurationInFrames: 30}},
		},
	}
}

func createDraft(t *testing.T, env *testEnv) *drafts.Draft {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/drafts", sampleDraftInput())
	expectStatus(t, rr, http.StatusCreated)
	var d drafts.Draft
	decodeInto(t, rr, &d)
	return &d
}

func TestDrafts_CRUD(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)
	if d.ID == "" || d.Status != drafts.StatusDraft || d.Name != "Launch teaser" {
		t.Fatalf("created = %+v", d)
	}

	rr := env.do(t, http.MethodGet, "/drafts/"+d.ID, nil)
	expectStatus(t, rr, http.StatusOK)

	rr = env.do(t, http.MethodGet, "/drafts?limit=10", nil)
	expectStatus(t, rr, http.StatusOK)
	var list DraftsResponse
	decodeInto(t, rr, &list)
	if len(list.Drafts) != 1 || list.Drafts[0].ID != d.ID {
		t.Errorf("list = %+v", list.Drafts)
	}

	rr = env.do(t, http.MethodPut, "/drafts/"+d.ID+"/composition", drafts.Composition{
		Platform: "instagram_feed",
		Ratio:    "4:5",
		Clips:    []timeline.Clip{{Source: "square.mp4"}},
	})
	expectStatus(t, rr, http.StatusOK)
	var updated drafts.Draft
	decodeInto(t, rr, &updated)
	if updated.Ratio != "4:5" || len(updated.Clips) != 1 || len(updated.Overlays) != 0 {
		t.Errorf("updated = %+v", updated)
	}

	rr = env.do(t, http.MethodDelete, "/drafts/"+d.ID, nil)
	expectStatus(t, rr, http.StatusNoContent)

	rr = env.do(t, http.MethodGet, "/drafts/"+d.ID, nil)
	expectErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestDrafts_EmptyList(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rr := env.do(t, http.MethodGet, "/drafts", nil)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"drafts":[]`) {
		t.Errorf("body = %s, want empty array", rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/drafts?limit=abc", nil)
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")
}

func TestDrafts_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	in := sampleDraftInput()
	in.Ratio = "16:9"
	rr := env.do(t, http.MethodPost, "/drafts", in)
	expectErrorCode(t, rr, http.StatusBadRequest, "RATIO_NOT_ALLOWED")

	d := createDraft(t, env)
	rr = env.do(t, http.MethodPut, "/drafts/"+d.ID+"/composition", drafts.Composition{Platform: "myspace"})
	expectErrorCode(t, rr, http.StatusBadRequest, "UNKNOWN_PLATFORM")

	rr = env.do(t, http.MethodPut, "/drafts/missing/composition", drafts.Composition{})
	expectErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestDrafts_ScheduleAndFrames(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	rr := env.do(t, http.MethodGet, "/drafts/"+d.ID+"/schedule", nil)
	expectStatus(t, rr, http.StatusOK)
	body := decodeJSONBody(t, rr)
	schedule := body["schedule"].(map[string]any)
	if schedule["totalFrames"].(float64) != 60 {
		t.Errorf("totalFrames = %v", schedule["totalFrames"])
	}

	rr = env.do(t, http.MethodGet, "/drafts/"+d.ID+"/frames/40", nil)
	expectStatus(t, rr, http.StatusOK)
	var s timeline.Sample
	decodeInto(t, rr, &s)
	if s.ActiveClip == nil || s.ActiveClip.Clip.Source != "product.png" || len(s.ActiveOverlays) != 1 {
		t.Errorf("frame 40 = %+v", s)
	}

	rr = env.do(t, http.MethodGet, "/drafts/"+d.ID+"/frames/abc", nil)
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")

	rr = env.do(t, http.MethodGet, "/drafts/missing/frames/0", nil)
	expectErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func readNDJSON(t *testing.T, body string) []timeline.Sample {
	t.Helper()
	var out []timeline.Sample
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		var s timeline.Sample
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", sc.Text(), err)
		}
		out = append(out, s)
	}
	return out
}

func TestDrafts_Preview(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	tests := []struct {
		name      string
		query     string
		wantFirst int
		wantCount int
	}{
		{"whole schedule", "", 0, 60},
		{"range", "?frames=10-19", 10, 10},
		{"tail realtime", "?frames=-5&realtime=1", 55, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/drafts/"+d.ID+"/preview"+tt.query, nil)
			expectStatus(t, rr, http.StatusOK)
			if ct := rr.Header().Get("Content-Type"); ct != "application/x-ndjson" {
				t.Errorf("Content-Type = %s", ct)
			}

			samples := readNDJSON(t, rr.Body.String())
			if len(samples) != tt.wantCount {
				t.Fatalf("samples = %d, want %d", len(samples), tt.wantCount)
			}
			for i, s := range samples {
				if s.Frame != tt.wantFirst+i {
					t.Errorf("samples[%d].Frame = %d, want %d", i, s.Frame, tt.wantFirst+i)
					break
				}
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/drafts/"+d.ID+"/preview?frames=60-", nil)
	expectErrorCode(t, rr, http.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE")

	rr = env.do(t, http.MethodGet, "/drafts/"+d.ID+"/preview?frames=1-2-3", nil)
	expectErrorCode(t, rr, http.StatusBadRequest, "INVALID_RANGE")
}

func TestDrafts_PreviewLoop(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := localRequest(http.MethodGet, "/drafts/"+d.ID+"/preview?frames=0-2&loop=1", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	// returns once the client context is done
	env.handler.ServeHTTP(rr, req)

	expectStatus(t, rr, http.StatusOK)
	samples := readNDJSON(t, rr.Body.String())
	if len(samples) <= 3 {
		t.Fatalf("samples = %d, want the range replayed", len(samples))
	}
	for i, s := range samples {
		if s.Frame != i%3 {
			t.Fatalf("samples[%d].Frame = %d, want %d", i, s.Frame, i%3)
		}
	}
}

func TestDrafts_ExportDownload(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	tests := []struct {
		format      string
		contentType string
		filename    string
		contains    string
	}{
		{"", "text/plain; charset=utf-8", "Launch teaser.edl", "TITLE: Launch teaser"},
		{"srt", "application/x-subrip", "Launch teaser.srt", "Coming soon"},
		{"vtt", "text/vtt", "Launch teaser.vtt", "WEBVTT"},
		{"ffmpeg", "text/x-shellscript", "Launch teaser.sh", "ffmpeg"},
	}
	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/drafts/"+d.ID+"/export?format="+tt.format, nil)
			expectStatus(t, rr, http.StatusOK)
			if ct := rr.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %s, want %s", ct, tt.contentType)
			}
			if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.filename) {
				t.Errorf("Content-Disposition = %s, want filename %s", cd, tt.filename)
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, rr.Body.String())
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/drafts/"+d.ID+"/export?format=fcpxml", nil)
	expectErrorCode(t, rr, http.StatusBadRequest, "UNKNOWN_FORMAT")
}

func TestDrafts_ExportWrite(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	outDir := t.TempDir()
	rr := env.do(t, http.MethodPost, "/drafts/"+d.ID+"/export", export.ExportRequest{Format: "vtt", OutputDir: outDir, Name: "teaser"})
	expectStatus(t, rr, http.StatusOK)

	var resp export.ExportResponse
	decodeInto(t, rr, &resp)
	if resp.OutputPath != filepath.Join(outDir, "teaser.vtt") || resp.CueCount != 1 || resp.ClipCount != 2 {
		t.Errorf("response = %+v", resp)
	}
	if _, err := os.Stat(resp.OutputPath); err != nil {
		t.Errorf("export not written: %v", err)
	}

	// no output_dir falls back to the configured export dir, named after the draft
	rr = env.do(t, http.MethodPost, "/drafts/"+d.ID+"/export", export.ExportRequest{Format: "edl"})
	expectStatus(t, rr, http.StatusOK)
	decodeInto(t, rr, &resp)
	if resp.OutputPath != filepath.Join(env.cfg.ExportDir, "Launch teaser.edl") {
		t.Errorf("OutputPath = %s", resp.OutputPath)
	}

	rr = env.do(t, http.MethodPost, "/drafts/"+d.ID+"/export", export.ExportRequest{Format: "edl", OutputDir: "../escape"})
	expectErrorCode(t, rr, http.StatusBadRequest, "INVALID_OUTPUT_DIR")
}

func TestDrafts_RenderLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := createDraft(t, env)

	rr := env.do(t, http.MethodPost, "/drafts/"+d.ID+"/render", nil)
	expectStatus(t, rr, http.StatusAccepted)
	var rendering drafts.Draft
	decodeInto(t, rr, &rendering)
	if rendering.Status != drafts.StatusRendering || !strings.HasPrefix(rendering.RenderID, "stub-") {
		t.Fatalf("after render = %+v", rendering)
	}

	rr = env.do(t, http.MethodPut, "/drafts/"+d.ID+"/composition", drafts.Composition{})
	expectErrorCode(t, rr, http.StatusConflict, "DRAFT_BUSY")

	rr = env.do(t, http.MethodPost, "/drafts/"+d.ID+"/render/result", drafts.RenderResult{})
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")

	rr = env.do(t, http.MethodPost, "/drafts/"+d.ID+"/render/result", drafts.RenderResult{RenderID: "stale"})
	expectErrorCode(t, rr, http.StatusConflict, "STALE_RENDER")

	rr = env.do(t, http.MethodPost, "/drafts/"+d.ID+"/render/result", drafts.RenderResult{
		RenderID: rendering.RenderID,
		Failed:   true,
		Error:    "codec missing",
	})
	expectStatus(t, rr, http.StatusOK)
	var failed drafts.Draft
	decodeInto(t, rr, &failed)
	if failed.Status != drafts.StatusFailed || failed.Error != "codec missing" {
		t.Errorf("after result = %+v", failed)
	}
}

type downRenderer struct{}

func (downRenderer) Submit(ctx context.Context, job render.Job) (*render.Receipt, error) {
	return nil, &render.RenderError{StatusCode: http.StatusServiceUnavailable, Body: "maintenance"}
}

func TestDrafts_RenderEngineDown(t *testing.T) {
	env := newTestEnv(t, nil, downRenderer{})
	d := createDraft(t, env)

	rr := env.do(t, http.MethodPost, "/drafts/"+d.ID+"/render", nil)
	expectErrorCode(t, rr, http.StatusBadGateway, "RENDER_ENGINE_ERROR")

	rr = env.do(t, http.MethodGet, "/drafts/"+d.ID, nil)
	var got drafts.Draft
	decodeInto(t, rr, &got)
	if got.Status != drafts.StatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestDrafts_FromArticle(t *testing.T) {
	fetcher := &fakeFetcher{article: &article.Article{
		Title:      "5 ways to speed up your morning",
		ListItems:  []string{"Prep the night before", "Lay out clothes", "Batch breakfast", "Skip the snooze", "Walk to work"},
		Paragraphs: []string{"Mornings are hard. These habits make them easier for everyone in the house."},
		Images:     []string{"https://example.com/1.jpg"},
	}}
	env := newTestEnv(t, fetcher, nil)

	rr := env.do(t, http.MethodPost, "/drafts/from-article", drafts.FromArticleInput{
		URL:      "https://example.com/mornings",
		Platform: "instagram_reels",
	})
	expectStatus(t, rr, http.StatusCreated)

	var d drafts.Draft
	decodeInto(t, rr, &d)
	if d.TemplateKey != "listicle" || d.ArticleURL != "https://example.com/mornings" || d.Platform != "instagram_reels" {
		t.Errorf("draft = %+v", d)
	}
	if len(d.Overlays) == 0 {
		t.Error("draft has no overlays")
	}

	rr = env.do(t, http.MethodPost, "/drafts/from-article", drafts.FromArticleInput{URL: "ftp://example.com"})
	expectErrorCode(t, rr, http.StatusBadRequest, "BAD_REQUEST")
}

func TestDrafts_FromArticleNoContent(t *testing.T) {
	env := newTestEnv(t, &fakeFetcher{err: article.ErrNoContent}, nil)

	rr := env.do(t, http.MethodPost, "/drafts/from-article", drafts.FromArticleInput{URL: "https://example.com/empty"})
	expectErrorCode(t, rr, http.StatusUnprocessableEntity, "NO_ARTICLE_CONTENT")
}
