package api

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/life-tick-go/internal/life"
)

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// probe is one named self-check. A failing required probe makes the service
// unhealthy; a failing optional one only degrades it.
type probe struct {
	name     string
	required bool
	run      func(ctx context.Context) error
}

// ProbeResult is the outcome of a single probe.
type ProbeResult struct {
	Status  HealthStatus `json:"status"`
	Error   string       `json:"error,omitempty"`
	Elapsed string       `json:"elapsed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Version    VersionInfo            `json:"version"`
	GridSize   int                    `json:"grid_size"`
	Uptime     string                 `json:"uptime"`
	Goroutines int                    `json:"goroutines"`
	Probes     map[string]ProbeResult `json:"probes"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// MetricsResponse is the body of GET /metrics.
type MetricsResponse struct {
	Version    VersionInfo          `json:"version"`
	Uptime     string               `json:"uptime"`
	Goroutines int                  `json:"goroutines"`
	HeapBytes  uint64               `json:"heap_bytes"`
	GCCycles   uint32               `json:"gc_cycles"`
	Operations map[string]OpMetrics `json:"operations"`
}

// OpMetrics counts calls to one endpoint.
type OpMetrics struct {
	Count  uint64  `json:"count"`
	Errors uint64  `json:"errors"`
	MeanMs float64 `json:"mean_ms"`
	Last   string  `json:"last,omitempty"`

	total time.Duration
}

// opsMonitor accumulates per-operation counters for /metrics.
type opsMonitor struct {
	mu  sync.Mutex
	ops map[string]*OpMetrics
}

func newOpsMonitor() *opsMonitor {
	return &opsMonitor{ops: make(map[string]*OpMetrics)}
}

func (m *opsMonitor) record(op string, start time.Time, ok bool) {
	elapsed := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	om := m.ops[op]
	if om == nil {
		om = &OpMetrics{}
		m.ops[op] = om
	}
	om.Count++
	if !ok {
		om.Errors++
	}
	om.total += elapsed
	om.MeanMs = float64(om.total.Microseconds()) / 1000 / float64(om.Count)
	om.Last = time.Now().UTC().Format(time.RFC3339)
}

func (m *opsMonitor) snapshot() map[string]OpMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]OpMetrics, len(m.ops))
	for op, om := range m.ops {
		out[op] = *om
	}
	return out
}

func (s *Server) probes() []probe {
	return []probe{
		{name: "engine", required: true, run: s.probeEngine},
		{name: "catalog", run: s.probeCatalog},
	}
}

// runProbes runs every probe, or only the required ones, and folds the
// results into one status.
func (s *Server) runProbes(ctx context.Context, requiredOnly bool) (HealthStatus, map[string]ProbeResult) {
	overall := HealthStatusHealthy
	results := make(map[string]ProbeResult)

	for _, p := range s.probes() {
		if requiredOnly && !p.required {
			continue
		}
		start := time.Now()
		err := p.run(ctx)
		res := ProbeResult{Status: HealthStatusHealthy, Elapsed: time.Since(start).String()}
		if err != nil {
			res.Status = HealthStatusUnhealthy
			res.Error = err.Error()
			switch {
			case p.required:
				overall = HealthStatusUnhealthy
			case overall == HealthStatusHealthy:
				overall = HealthStatusDegraded
			}
		}
		results[p.name] = res
	}
	return overall, results
}

// probeEngine advances a blinker away from the border and checks it flipped.
func (s *Server) probeEngine(context.Context) error {
	board, err := life.Place(5, 5, []life.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}})
	if err != nil {
		return err
	}
	next := life.NextGeneration(board, 5, 5)
	if next[1][2] != life.Alive || next[3][2] != life.Alive || next[2][1] != life.Dead {
		return errors.New("blinker did not oscillate")
	}
	return nil
}

func (s *Server) probeCatalog(ctx context.Context) error {
	if s.db == nil {
		return errors.New("pattern catalog not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}

// handleHealthCheck reports every probe. Only a failing required probe
// turns the response into a 503.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	status, results := s.runProbes(r.Context(), false)

	code := http.StatusOK
	if status == HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	if status != HealthStatusHealthy {
		s.audit.LogAuditEvent(requestID, "health_check", "system", string(status), map[string]interface{}{
			"probes": results,
		})
	}

	s.writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    GetVersionInfo(),
		GridSize:   s.size,
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Probes:     results,
		RequestID:  requestID,
	})
}

// handleReadiness answers 200 once the required probes pass.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	status, results := s.runProbes(r.Context(), true)
	code := http.StatusOK
	if status != HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]interface{}{
		"ready":  code == http.StatusOK,
		"probes": results,
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.writeJSON(w, http.StatusOK, MetricsResponse{
		Version:    GetVersionInfo(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		GCCycles:   mem.NumGC,
		Operations: s.ops.snapshot(),
	})
}
