package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/course-progress-api/pkg/config"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

const maxUpstreamBody = 32 << 20

// UpstreamClient performs requests against the course backend REST API. Every call is
// bounded by the configured timeout and the caller's context.
type UpstreamClient struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

// NewUpstreamClient constructs a client for cfg. A nil httpClient uses a default client.
func NewUpstreamClient(cfg config.UpstreamConfig, httpClient *http.Client) *UpstreamClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &UpstreamClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		timeout: cfg.Timeout,
		http:    httpClient,
	}
}

type upstreamRequest struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func (c *UpstreamClient) do(ctx context.Context, req upstreamRequest) ([]byte, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid upstream request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("%s %s failed", req.method, req.path))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, resp.StatusCode, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("read %s response", req.path))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload, resp.StatusCode, appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(payload, 256)),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("%s %s returned %d", req.method, req.path, resp.StatusCode),
		)
	}
	return payload, resp.StatusCode, nil
}

func (c *UpstreamClient) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	payload, _, err := c.do(ctx, upstreamRequest{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decodeUpstream(path, payload, dest)
}

func (c *UpstreamClient) postJSON(ctx context.Context, path string, in interface{}) ([]byte, int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, 0, fmt.Errorf("encode %s request: %w", path, err)
	}
	return c.do(ctx, upstreamRequest{method: http.MethodPost, path: path, body: body, contentType: "application/json"})
}

func decodeUpstream(path string, payload []byte, dest interface{}) error {
	if err := json.Unmarshal(payload, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("malformed %s response", path))
	}
	return nil
}

func truncate(payload []byte, limit int) string {
	if len(payload) <= limit {
		return string(payload)
	}
	return string(payload[:limit]) + "..."
}
