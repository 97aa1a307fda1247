// Package backend is the HTTP client for the events REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/speakerdesk/internal/session"
	"github.com/dmitrymomot/speakerdesk/pkg/cache"
	"github.com/dmitrymomot/speakerdesk/pkg/logger"
	"github.com/dmitrymomot/speakerdesk/pkg/requestid"
)

// Config configures the backend client.
type Config struct {
	URL           string        `env:"BACKEND_URL" envDefault:"http://localhost:3000"`
	Timeout       time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	UserCacheTTL  time.Duration `env:"BACKEND_USER_CACHE_TTL" envDefault:"1m"`
	UserCacheSize int           `env:"BACKEND_USER_CACHE_SIZE" envDefault:"1024"`
}

// Client calls the backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	flight     singleflight.Group
	users      *cache.LRUCache[string, *session.UserProfile]
	generation atomic.Uint64
	status     *statusTracker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the backend at cfg.URL. Requests go to
// cfg.URL + "/api/".
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserCacheSize <= 0 {
		cfg.UserCacheSize = 1024
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/") + "/api/",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        slog.Default(),
		users:      cache.NewLRUCache[string, *session.UserProfile](cfg.UserCacheSize, cache.WithTTL(cfg.UserCacheTTL)),
		status:     newStatusTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("backend"))
	return c
}

// Status returns the state of the most recent call of op.
func (c *Client) Status(op Operation) Status {
	return c.status.get(op)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return request{method: method, path: path, body: bytes.NewReader(data), contentType: "application/json"}, nil
}

// do sends req and decodes a 2xx JSON body into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL + strings.TrimPrefix(req.path, "/")
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	requestid.Propagate(ctx, httpReq.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.WarnContext(ctx, "backend request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			logger.Error(err),
		)
		return errors.Join(ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.DebugContext(ctx, "backend request",
		slog.String("method", req.method),
		slog.String("path", req.path),
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Join(ErrUnavailable, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: decodeMessage(body)}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}
