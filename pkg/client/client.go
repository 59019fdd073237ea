// Package client is the typed wrapper over the TimeTrack REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  *Page           `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Page is the pagination block returned by list endpoints.
type Page struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *zap.Logger

	mu             sync.RWMutex
	onUnauthorized []func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("client")
		}
	}
}

// New builds a client for baseURL, e.g. "http://localhost:8000/api/v1".
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
		tokens: tokens,
		logger: zap.L().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers fn to run after any 401 has cleared the token.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
	c.mu.Unlock()
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	anonymous bool // 401 is a plain error, not a session teardown
}

func (c *Client) do(ctx context.Context, r request, out any) (*Page, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.apiError(r, resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !r.anonymous {
		resp.Body.Close()
		c.logger.Info("unauthorized response, clearing session",
			zap.String("method", r.method),
			zap.String("path", r.path),
		)
		c.tokens.Clear()
		c.mu.RLock()
		handlers := append([]func(){}, c.onUnauthorized...)
		c.mu.RUnlock()
		for _, fn := range handlers {
			fn()
		}
		return nil, ErrUnauthorized
	}
	return resp, nil
}

func (c *Client) apiError(r request, status int, env envelope, decodeErr error) *APIError {
	apiErr := &APIError{Status: status, Message: GenericMessage}
	if decodeErr == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		if msg := strings.TrimSpace(env.Error.Message); msg != "" {
			apiErr.Message = msg
			apiErr.fromServer = true
		}
	}
	c.logger.Debug("api error",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", status),
		zap.String("code", apiErr.Code),
	)
	return apiErr
}

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", fmt.Sprint(skip))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}
