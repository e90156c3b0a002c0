package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/reelwright/reelwright/internal/article"
	"github.com/reelwright/reelwright/internal/composer"
	"github.com/reelwright/reelwright/internal/db"
	"github.com/reelwright/reelwright/internal/drafts"
	"github.com/reelwright/reelwright/internal/render"
)

const testToken = "test-token-0123456789"

type fakeFetcher struct {
	article *article.Article
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*article.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.article
	a.URL = url
	return &a, nil
}

type testEnv struct {
	cfg     ServerConfig
	handler http.Handler
	repo    drafts.Repository
}

func newTestEnv(t *testing.T, fetcher drafts.ArticleFetcher, renderer render.Client) *testEnv {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := drafts.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), AuthTokenKey, testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if renderer == nil {
		renderer = render.NewStubClient(logger)
	}
	comp := composer.NewService(logger)

	cfg := ServerConfig{
		ExportDir:       filepath.Join(t.TempDir(), "exports"),
		Drafts:          drafts.NewService(repo, comp, fetcher, renderer, logger),
		Composer:        comp,
		Tokens:          repo,
		Logger:          logger,
		StartTime:       time.Now(),
		PreviewInterval: time.Millisecond,
	}
	return &testEnv{cfg: cfg, handler: NewRouter(cfg), repo: repo}
}

// localRequest builds a request that arrives from this machine, as every
// request to the server does.
func localRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "127.0.0.1:51234"
	return req
}

// do sends an authenticated request. body is JSON-encoded unless nil.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal error: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := localRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
	return body
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func expectErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	if got := decodeJSONBody(t, rr)["code"]; got != code {
		t.Errorf("code = %v, want %s", got, code)
	}
}
