// Package client talks to a life-tick server and drives the polling loop
// that renders successive generations.
//
// # Usage
//
//	c := client.NewClient(client.Config{BaseURL: "http://localhost:8080"})
//	loop := client.NewLoop(c, client.NewTerminalRenderer(os.Stdout), client.LoopConfig{})
//	loop.Start(ctx, nil)
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
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MJE43/life-tick-go/internal/engine"
	"github.com/MJE43/life-tick-go/internal/life"
)

const (
	// DefaultBaseURL is the server address used when none is configured.
	DefaultBaseURL = "http://localhost:8080"

	tokenHeader  = "X-Life-Token"
	legacyHeader = "X-Game-Of-Life"
)

// Config holds configuration for the client.
type Config struct {
	// BaseURL is the server root. Defaults to DefaultBaseURL.
	BaseURL string

	// Token is sent in X-Life-Token when non-empty.
	Token string

	// Legacy posts ticks to "/" with the X-Game-Of-Life header instead of
	// /api/v1/generation.
	Legacy bool

	// MaxRetries is the number of extra attempts after a transport failure
	// or a retryable HTTP status. Defaults to 2 if zero; negative disables retries.
	MaxRetries int

	// BaseRetryDelay is the first backoff delay. Defaults to 50ms if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff. Defaults to 1s if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// Defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string
}

// ServerConfig is the board configuration reported by the server.
type ServerConfig struct {
	GridSize      int    `json:"grid_size"`
	TokenRequired bool   `json:"token_required"`
	EngineVersion string `json:"engine_version"`
}

// Client is a life-tick API client. It is safe for concurrent use.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	switch {
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = 2
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 50 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// BaseURL returns the configured server root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Next sends prev and returns the server's answer: the next generation, or a
// random board when prev is empty.
func (c *Client) Next(ctx context.Context, prev life.Grid) (life.Grid, error) {
	body := []byte("[]")
	if len(prev) > 0 {
		var err error
		if body, err = json.Marshal(prev); err != nil {
			return nil, fmt.Errorf("life: marshal grid: %w", err)
		}
	}

	path := "/api/v1/generation"
	var headers map[string]string
	if c.config.Legacy {
		path = "/"
		headers = map[string]string{legacyHeader: "1"}
	}

	respBody, err := c.do(ctx, http.MethodPost, path, body, headers)
	if err != nil {
		return nil, err
	}
	return decodeGrid(respBody)
}

// Random asks for a fresh random board.
func (c *Client) Random(ctx context.Context) (life.Grid, error) {
	respBody, err := c.do(ctx, http.MethodPost, "/api/v1/random", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeGrid(respBody)
}

// SeededRandom asks for the board derived from seeds and nonce.
func (c *Client) SeededRandom(ctx context.Context, seeds engine.Seeds, nonce uint64) (life.Grid, error) {
	body, err := json.Marshal(struct {
		engine.Seeds
		Nonce uint64 `json:"nonce"`
	}{seeds, nonce})
	if err != nil {
		return nil, fmt.Errorf("life: marshal seeds: %w", err)
	}
	respBody, err := c.do(ctx, http.MethodPost, "/api/v1/random", body, nil)
	if err != nil {
		return nil, err
	}
	return decodeGrid(respBody)
}

// PatternGrid returns the named catalog pattern placed on an empty board.
func (c *Client) PatternGrid(ctx context.Context, name string) (life.Grid, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/api/v1/patterns/"+url.PathEscape(name)+"/grid", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeGrid(respBody)
}

// ServerConfig fetches the server's board configuration.
func (c *Client) ServerConfig(ctx context.Context) (*ServerConfig, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/api/v1/config", nil, nil)
	if err != nil {
		return nil, err
	}
	var cfg ServerConfig
	if err := json.Unmarshal(respBody, &cfg); err != nil {
		return nil, fmt.Errorf("life: decode config: %w", err)
	}
	return &cfg, nil
}

// do sends a request, retrying transport failures and retryable statuses
// with capped exponential backoff, and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	backoff := retry.WithMaxRetries(uint64(c.config.MaxRetries),
		retry.WithCappedDuration(c.config.MaxRetryDelay,
			retry.NewExponential(c.config.BaseRetryDelay)))

	var out []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		respBody, retryable, err := c.doOnce(ctx, method, path, body, headers)
		if err != nil {
			if retryable {
				return retry.RetryableError(err)
			}
			return err
		}
		out = respBody
		return nil
	})
	return out, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, bool, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, rdr)
	if err != nil {
		return nil, false, fmt.Errorf("life: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set(tokenHeader, c.config.Token)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("life: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("life: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := newHTTPError(resp, respBody)
		return nil, httpErr.IsRetryable(), httpErr
	}
	return respBody, false, nil
}

func decodeGrid(body []byte) (life.Grid, error) {
	var g life.Grid
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("life: decode grid: %w", err)
	}
	return g, nil
}
