// Package httpapi talks to the exchange backend over HTTP. Each endpoint
// payload is decoded into an explicit shape; anything else is reported as
// domain.ErrShape so the resolver can fall through to the next source.
package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
)

const (
	DefaultTimeout   = 15 * time.Second
	maxResponseBytes = 4 << 20
	defaultUserAgent = "xd"
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     ports.TokenSource
	userAgent  string
}

var _ ports.DashboardAPI = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout, Transport: c.httpClient.Transport}
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

func NewClient(baseURL string, tokens ports.TokenSource, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must use http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api base url %q has no host", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     tokens,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

func (c *Client) EnhancedStats(ctx context.Context, viewer domain.Viewer) (domain.EnhancedFragment, error) {
	query := url.Values{}
	query.Set("role", string(viewer.Role.Normalize()))
	if viewer.UserID != "" {
		query.Set("userId", viewer.UserID)
	}

	body, err := c.do(ctx, http.MethodGet, "/dashboard/enhanced-stats", query, nil)
	if err != nil {
		return domain.EnhancedFragment{}, err
	}

	fragment, err := decodeEnhanced(body)
	if err != nil {
		return domain.EnhancedFragment{}, fmt.Errorf("enhanced stats: %w", err)
	}
	return fragment, nil
}

func (c *Client) Overview(ctx context.Context, _ domain.Viewer) (domain.OverviewFragment, error) {
	body, err := c.do(ctx, http.MethodGet, "/dashboard/overview", nil, nil)
	if err != nil {
		return domain.OverviewFragment{}, err
	}

	fragment, err := decodeOverview(body)
	if err != nil {
		return domain.OverviewFragment{}, fmt.Errorf("dashboard overview: %w", err)
	}
	return fragment, nil
}

func (c *Client) ListExchanges(ctx context.Context) ([]domain.Exchange, error) {
	body, err := c.do(ctx, http.MethodGet, "/exchanges", nil, nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeList[exchangeWire](body, "exchanges")
	if err != nil {
		return nil, err
	}
	return mapSlice(items, exchangeWire.toDomain), nil
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	body, err := c.do(ctx, http.MethodGet, "/tasks", nil, nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeList[taskWire](body, "tasks")
	if err != nil {
		return nil, err
	}
	return mapSlice(items, taskWire.toDomain), nil
}

// TriggerSync starts a pull from the external system. The idempotency key
// lets the backend drop a retried request for a sync already running.
func (c *Client) TriggerSync(ctx context.Context, idempotencyKey string) (domain.SyncReceipt, error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}

	body, err := c.do(ctx, http.MethodPost, "/sync/external", nil, headers)
	if err != nil {
		return domain.SyncReceipt{}, err
	}

	receipt, err := decodeSync(body, idempotencyKey)
	if err != nil {
		return domain.SyncReceipt{}, fmt.Errorf("external sync: %w", err)
	}
	return receipt, nil
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, headers http.Header) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()

	var payload io.Reader
	if method == http.MethodPost {
		payload = strings.NewReader("{}")
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	for name, values := range headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: read response: %w", domain.ErrTransport, method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrTransport, method, path, resp.StatusCode, snippet(body))
	}

	return body, nil
}

func snippet(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
