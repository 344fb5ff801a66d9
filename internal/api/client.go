package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"qms-console/internal/observability"
)

const maxResponseBytes = 8 << 20

// Auth endpoints never trigger the refresh protocol: a 401 from them is a
// credential failure, not an expired access token.
var authEndpoints = []string{"/auth/login", "/auth/refresh", "/auth/logout"}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Hooks are injected at construction by the session controller. The client
// never owns token state.
type Hooks struct {
	GetAccessToken   func() string
	GetRefreshToken  func() string
	SetTokens        func(Tokens)
	OnSessionExpired func()
}

type Client struct {
	baseURL string
	http    *http.Client
	hooks   Hooks
	logger  *observability.Logger
	refresh singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration, hooks Hooks, logger *observability.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = observability.NewSilentLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		hooks:   hooks,
		logger:  logger,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, false, "")
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, false, "")
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out, false, "")
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out, false, "")
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, false, "")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, retried bool, bearer string) error {
	req, err := c.newRequest(ctx, method, path, body, bearer)
	if err != nil {
		return err
	}

	start := time.Now().UTC()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api_request_failed", map[string]any{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Err: err}
	}

	c.logger.Info("api_request", map[string]any{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 400 {
		return c.handleError(ctx, method, path, body, out, retried, resp.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// handleError applies the 401 refresh-and-retry protocol. Every other failure
// propagates unchanged.
func (c *Client) handleError(ctx context.Context, method, path string, body, out any, retried bool, status int, payload []byte) error {
	apiErr := parseError(status, payload)
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(apiErr)
	}

	if status != http.StatusUnauthorized || retried || isAuthEndpoint(path) {
		return apiErr
	}

	if c.refreshToken() == "" {
		c.sessionExpired()
		return apiErr
	}

	tokens, err := c.refreshTokens(ctx)
	if err != nil {
		c.sessionExpired()
		return err
	}

	// Retry exactly once with the token the shared refresh produced.
	return c.do(ctx, method, path, body, out, true, tokens.AccessToken)
}

// refreshTokens coalesces concurrent refresh attempts: all callers that
// observe a 401 while a refresh is in flight share its outcome, and at most
// one POST /auth/refresh is issued. Once settled the flight is forgotten so a
// later 401 can start a new one.
func (c *Client) refreshTokens(ctx context.Context) (Tokens, error) {
	result, err, _ := c.refresh.Do("refresh", func() (any, error) {
		var tokens Tokens
		request := map[string]string{"refreshToken": c.refreshToken()}
		if err := c.do(ctx, http.MethodPost, "/auth/refresh", request, &tokens, true, ""); err != nil {
			return Tokens{}, err
		}
		if c.hooks.SetTokens != nil {
			c.hooks.SetTokens(tokens)
		}
		return tokens, nil
	})
	if err != nil {
		return Tokens{}, err
	}
	return result.(Tokens), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, bearer string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+normalizePath(path), reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if bearer == "" && c.hooks.GetAccessToken != nil {
		bearer = c.hooks.GetAccessToken()
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

func (c *Client) refreshToken() string {
	if c.hooks.GetRefreshToken == nil {
		return ""
	}
	return c.hooks.GetRefreshToken()
}

func (c *Client) sessionExpired() {
	if c.hooks.OnSessionExpired != nil {
		c.hooks.OnSessionExpired()
	}
}

func isAuthEndpoint(path string) bool {
	for _, endpoint := range authEndpoints {
		if strings.Contains(path, endpoint) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
