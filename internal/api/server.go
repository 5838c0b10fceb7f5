package api

import (
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/life-tick-go/internal/life"
	"github.com/MJE43/life-tick-go/internal/store"
)

// Config holds the server's fixed settings.
type Config struct {
	// GridSize is the row and column count of every board. Defaults to life.DefaultSize.
	GridSize int

	// Token, when non-empty, must be sent in the X-Life-Token header on /api routes.
	Token string

	// RequestTimeout bounds each request. Defaults to 10 seconds.
	RequestTimeout time.Duration

	// ScriptTimeout bounds script seeding. Defaults to 2 seconds.
	ScriptTimeout time.Duration

	// NewSource returns the randomness for a bootstrap board. Defaults to a
	// time-seeded math/rand source per call.
	NewSource func() life.Source

	// LogOutput receives API and audit logs. Defaults to stdout.
	LogOutput io.Writer
}

// Server handles HTTP requests
type Server struct {
	db           store.DB
	size         int
	token        string
	timeout      time.Duration
	scriptTTL    time.Duration
	newSource    func() life.Source
	errorHandler *ErrorHandler
	logger       *log.Logger
	audit        *AuditLogger
	ops          *opsMonitor
	startTime    time.Time
}

// NewServer creates a new API server
func NewServer(db store.DB, cfg Config) *Server {
	if cfg.GridSize <= 0 {
		cfg.GridSize = life.DefaultSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.NewSource == nil {
		cfg.NewSource = func() life.Source {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}

	logger := log.New(out, "[API] ", log.LstdFlags|log.Lshortfile)
	audit := NewAuditLogger(out)

	s := &Server{
		db:           db,
		size:         cfg.GridSize,
		token:        cfg.Token,
		timeout:      cfg.RequestTimeout,
		scriptTTL:    cfg.ScriptTimeout,
		newSource:    cfg.NewSource,
		errorHandler: NewErrorHandler(logger, audit),
		logger:       logger,
		audit:        audit,
		ops:          newOpsMonitor(),
		startTime:    time.Now(),
	}

	audit.LogSystemStartup(map[string]interface{}{
		"grid_size":        s.size,
		"token_enabled":    s.token != "",
		"database_enabled": s.db != nil,
	})

	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.LoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/metrics", s.handleMetrics)

	r.Group(func(r chi.Router) {
		r.Use(s.TokenMiddleware)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/generation", s.handleGeneration)
			r.Post("/random", s.handleRandom)
			r.Post("/stats", s.handleStats)
			r.Get("/config", s.handleConfig)
			r.Post("/seed/script", s.handleScriptSeed)

			r.Get("/patterns", s.handleListPatterns)
			r.Post("/patterns", s.handleCreatePattern)
			r.Get("/patterns/{name}", s.handleGetPattern)
			r.Get("/patterns/{name}/grid", s.handlePatternGrid)
		})

		// Legacy single-endpoint protocol: POST / with X-Game-Of-Life.
		r.Post("/", s.handleLegacy)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeNotFound, "route not found").
			WithContext("path", r.URL.Path).
			Build())
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed status=%d err=%v", status, err)
	}
}
