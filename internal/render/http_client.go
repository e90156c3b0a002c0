package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RenderError is a non-2xx answer from the engine.
type RenderError struct {
	StatusCode int
	Body       string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render submit failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx) are
// permanent.
func (e *RenderError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// HTTPClient posts jobs to {baseURL}/api/render.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// SetTimeout bounds each submit request. Non-positive values are ignored.
func (c *HTTPClient) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

func (c *HTTPClient) Submit(ctx context.Context, job Job) (*Receipt, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal render job: %w", err)
	}

	url := c.baseURL + "/api/render"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Info("submitting render job",
		"url", url,
		"draft_id", job.DraftID,
		"request_id", requestID,
		"body_bytes", len(body),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RenderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("decode render receipt: %w", err)
	}
	if receipt.RenderID == "" {
		return nil, fmt.Errorf("render receipt has no render_id")
	}
	if receipt.Status == "" {
		receipt.Status = "queued"
	}

	c.logger.Info("render job accepted", "draft_id", job.DraftID, "render_id", receipt.RenderID)
	return &receipt, nil
}
