// Package renderer is the HTTP client for the external slide-renderer
// collaborator (§6): POST /convert {bucket_name, object_name} -> ordered
// image canonical paths, retried on 5xx and transport errors with a fixed
// exponential backoff (2s, 4s, 8s): up to 3 retries, 4 attempts in all.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rakshabesafe/ppttovideo/internal/platform/config"
	"github.com/rakshabesafe/ppttovideo/internal/platform/logger"
)

// retrySchedule is the literal 2s/4s/8s backoff the spec mandates; unlike
// the jittered exponential backoff used for Temporal dialing, this
// external contract is exact and tested against, so it is not randomized.
var retrySchedule = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

type convertRequest struct {
	BucketName string `json:"bucket_name"`
	ObjectName string `json:"object_name"`
}

type convertResponse struct {
	ImagePaths []string `json:"image_paths"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the external slide-renderer over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func New(cfg config.Renderer, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.With("component", "renderer"),
	}
}

// Convert renders the slide deck at (bucket, object) into an ordered list
// of image canonical paths. 5xx responses and transport errors are retried
// per retrySchedule; 4xx responses fail immediately (input-invalid, not
// transient).
func (c *Client) Convert(ctx context.Context, bucket, object string) ([]string, error) {
	body, err := json.Marshal(convertRequest{BucketName: bucket, ObjectName: object})
	if err != nil {
		return nil, fmt.Errorf("renderer: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		paths, retryable, err := c.doConvert(ctx, body)
		if err == nil {
			return paths, nil
		}
		lastErr = err
		if !retryable || attempt >= len(retrySchedule) {
			return nil, lastErr
		}
		c.log.Warn("renderer: retrying after 5xx", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retrySchedule[attempt]):
		}
	}
}

func (c *Client) doConvert(ctx context.Context, body []byte) ([]string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("renderer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("renderer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out convertResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, false, fmt.Errorf("renderer: decode response: %w", err)
		}
		return out.ImagePaths, false, nil
	}

	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	if e.Error == "" {
		e.Error = fmt.Sprintf("renderer: unexpected status %d", resp.StatusCode)
	}
	retryable := resp.StatusCode >= 500
	return nil, retryable, fmt.Errorf("renderer: %s (status %d)", e.Error, resp.StatusCode)
}
