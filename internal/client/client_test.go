package client

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MJE43/life-tick-go/internal/api"
	"github.com/MJE43/life-tick-go/internal/engine"
	"github.com/MJE43/life-tick-go/internal/life"
)

const testSize = 10

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	s := api.NewServer(nil, api.Config{
		GridSize:  testSize,
		Token:     token,
		NewSource: func() life.Source { return rand.New(rand.NewSource(7)) },
		LogOutput: io.Discard,
	})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("default base URL: got %s", c.BaseURL())
	}

	c = NewClient(Config{BaseURL: "http://example.test/"})
	if c.BaseURL() != "http://example.test" {
		t.Errorf("trailing slash not trimmed: %s", c.BaseURL())
	}
}

func TestNextBootstrapsThenAdvances(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		srv := newTestServer(t, "")
		c := NewClient(Config{BaseURL: srv.URL, Legacy: legacy})
		ctx := context.Background()

		first, err := c.Next(ctx, nil)
		if err != nil {
			t.Fatalf("legacy=%v bootstrap: %v", legacy, err)
		}
		want := life.RandomGrid(testSize, testSize, rand.New(rand.NewSource(7)))
		if !first.Equal(want) {
			t.Fatalf("legacy=%v bootstrap board does not match server source", legacy)
		}

		second, err := c.Next(ctx, first)
		if err != nil {
			t.Fatalf("legacy=%v next: %v", legacy, err)
		}
		if !second.Equal(life.NextGeneration(first, testSize, testSize)) {
			t.Fatalf("legacy=%v server returned the wrong generation", legacy)
		}
	}
}

func TestNextDimensionMismatch(t *testing.T) {
	srv := newTestServer(t, "")
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.Next(context.Background(), life.NewGrid(3, 3))
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnprocessableEntity || httpErr.Type != "dimension_mismatch" {
		t.Errorf("unexpected error: %+v", httpErr)
	}
	if httpErr.IsRetryable() {
		t.Error("dimension mismatch must not be retryable")
	}
}

func TestToken(t *testing.T) {
	srv := newTestServer(t, "tok")

	_, err := NewClient(Config{BaseURL: srv.URL}).Next(context.Background(), nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.IsUnauthorized() {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if _, err := NewClient(Config{BaseURL: srv.URL, Token: "tok"}).Next(context.Background(), nil); err != nil {
		t.Fatalf("with token: %v", err)
	}
}

func TestSeededRandomAndConfig(t *testing.T) {
	srv := newTestServer(t, "")
	c := NewClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	seeds := engine.Seeds{Server: "a", Client: "b"}
	g, err := c.SeededRandom(ctx, seeds, 9)
	if err != nil {
		t.Fatalf("SeededRandom: %v", err)
	}
	if !g.Equal(engine.Board(seeds, 9, testSize)) {
		t.Error("seeded board mismatch")
	}

	if _, err := c.Random(ctx); err != nil {
		t.Fatalf("Random: %v", err)
	}

	cfg, err := c.ServerConfig(ctx)
	if err != nil {
		t.Fatalf("ServerConfig: %v", err)
	}
	if cfg.GridSize != testSize || cfg.TokenRequired {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestPatternGridWithoutCatalog(t *testing.T) {
	srv := newTestServer(t, "")
	_, err := NewClient(Config{BaseURL: srv.URL, BaseRetryDelay: time.Millisecond}).PatternGrid(context.Background(), "glider")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
	if !httpErr.IsRetryable() {
		t.Error("503 should be retryable")
	}
}

func TestHTTPErrorFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL, MaxRetries: -1}).Next(context.Background(), nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Message != "" || httpErr.Body != "gateway down\n" {
		t.Errorf("unexpected error: %+v", httpErr)
	}
}

func TestRetriesTransientStatus(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.Header().Set("X-Error-Type", "service_unavailable")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("[[0,0],[0,0]]"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, BaseRetryDelay: time.Millisecond})
	g, err := c.Next(context.Background(), nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if attempts.Load() != 3 || g.Rows() != 2 {
		t.Errorf("attempts = %d, rows = %d", attempts.Load(), g.Rows())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, BaseRetryDelay: time.Millisecond})
	if _, err := c.Next(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1", attempts.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxRetries: 3, BaseRetryDelay: time.Millisecond})
	_, err := c.Next(context.Background(), nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}
	if attempts.Load() != 4 {
		t.Errorf("attempts = %d, want 4", attempts.Load())
	}
}
