package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/metrics"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	AuthorizationHeader = "Authorization"
	RequestIDHeader     = "X-Request-ID"

	defaultTimeout = 15 * time.Second
	maxBodySize    = 1 << 20
)

// UnauthorizedHandler is called after a 401 has cleared the token store.
type UnauthorizedHandler func(ctx context.Context)

// HTTPClient is the authenticated request client. It is safe for concurrent use.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      tokenstore.Store
	logger     logging.Logger
	metrics    *metrics.Metrics
	validate   *validator.Validate
	now        func() time.Time

	mu             sync.RWMutex
	onUnauthorized UnauthorizedHandler
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call so a pending mutation always resolves.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithClock sets the time source used to detect expired credentials.
func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewHTTPClient builds a client for the backend rooted at baseURL
// (e.g. "http://127.0.0.1:8080/api").
func NewHTTPClient(baseURL string, store tokenstore.Store, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if store == nil {
		return nil, errors.New("token store is required")
	}

	c := &HTTPClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     logging.Discard(),
		validate:   validator.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "client")
	return c, nil
}

// SetUnauthorizedHandler registers the callback run after a 401.
func (c *HTTPClient) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

// Invalidate clears the token store and notifies the unauthorized handler.
// It is the single place where the credential is dropped on a failure path.
func (c *HTTPClient) Invalidate(ctx context.Context) error {
	err := c.store.Clear(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to clear token store", "error", err)
	}

	c.mu.RLock()
	h := c.onUnauthorized
	c.mu.RUnlock()
	if h != nil {
		h(ctx)
	}
	return err
}

// invalidateIfCurrent drops the credential only if it is still the one the
// failed request carried. A 401 for a token that has since been replaced
// (a fresh login raced the request) must not sign the new session out.
func (c *HTTPClient) invalidateIfCurrent(ctx context.Context, sent string) {
	cred, ok, err := c.store.Get(ctx)
	if err == nil && ok && cred.Token != sent {
		c.logger.Debug(ctx, "ignoring 401 for a replaced credential")
		return
	}
	_ = c.Invalidate(ctx)
}

// Do sends a JSON request and decodes a JSON response into out (when out is
// not nil), validating it against its struct tags.
func (c *HTTPClient) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	cred, ok, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Warn(ctx, "token store unreadable, sending unauthenticated", "error", err)
	} else if ok && cred.Expired(c.now()) {
		c.logger.Info(ctx, "stored credential expired, sending unauthenticated")
		c.invalidateIfCurrent(ctx, cred.Token)
	} else if ok {
		token = cred.Token
		req.Header.Set(AuthorizationHeader, "Bearer "+token)
	}

	log := c.logger.With("method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(path, metrics.OutcomeUnavailable)
		log.Warn(ctx, "request failed", "error", err)
		return &ResponseError{Kind: ErrUnavailable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.ObserveRequest(path, metrics.OutcomeUnavailable)
		return &ResponseError{Kind: ErrUnavailable, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug(ctx, "request finished", "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.metrics.ObserveRequest(path, metrics.OutcomeUnauthorized)
		c.invalidateIfCurrent(ctx, token)
		return &ResponseError{Kind: ErrUnauthorized, Status: resp.StatusCode, Message: extractMessage(raw)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.metrics.ObserveRequest(path, metrics.OutcomeServer)
		return &ResponseError{Kind: ErrServer, Status: resp.StatusCode, Message: extractMessage(raw)}
	}

	if out == nil {
		c.metrics.ObserveRequest(path, metrics.OutcomeOK)
		return nil
	}

	if err := c.decode(raw, out); err != nil {
		c.metrics.ObserveRequest(path, metrics.OutcomeValidation)
		log.Warn(ctx, "malformed response", "error", err)
		return &ResponseError{Kind: ErrValidation, Status: resp.StatusCode, Err: err}
	}

	c.metrics.ObserveRequest(path, metrics.OutcomeOK)
	return nil
}

func (c *HTTPClient) decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

func extractMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
