package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/life-tick-go/internal/engine"
	"github.com/MJE43/life-tick-go/internal/life"
	"github.com/MJE43/life-tick-go/internal/scripting"
	"github.com/MJE43/life-tick-go/internal/stats"
	"github.com/MJE43/life-tick-go/internal/store"
)

// LegacyHeader marks a request to the original single-endpoint protocol.
const LegacyHeader = "X-Game-Of-Life"

// handleGeneration returns the next generation of the posted board, or a
// random board when the body carries no grid.
func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetReqID(r.Context())

	body, err := s.readBody(w, r)
	if err != nil {
		s.ops.record("generation", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}

	in, err := DecodeGrid(body, s.size)
	if err != nil {
		s.ops.record("generation", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var out life.Grid
	if in == nil {
		out = life.RandomGrid(s.size, s.size, s.newSource())
	} else {
		out = life.NextGeneration(in, s.size, s.size)
	}

	s.audit.LogGeneration(requestID, in == nil, in, out)
	s.ops.record("generation", start, true)
	s.writeGrid(w, out)
}

// handleLegacy serves the original protocol: the X-Game-Of-Life header
// selects the JSON tick exchange.
func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(LegacyHeader) == "" {
		s.errorHandler.HandleError(w, r, NewError(ErrTypeNotFound, "POST / requires the "+LegacyHeader+" header").
			WithContext("path", r.URL.Path).
			Build())
		return
	}
	s.handleGeneration(w, r)
}

// handleRandom returns a fresh board. When seeds are supplied the board is
// derived deterministically from them.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetReqID(r.Context())

	body, err := s.readBody(w, r)
	if err != nil {
		s.ops.record("random", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var req RandomRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := decodeStrict(body, &req); err != nil {
			s.ops.record("random", start, false)
			s.errorHandler.HandleError(w, r, err)
			return
		}
	}

	var out life.Grid
	if req.Server != "" {
		out = engine.Board(req.Seeds, req.Nonce, s.size)
	} else {
		if req.Client != "" || req.Nonce != 0 {
			s.ops.record("random", start, false)
			s.errorHandler.HandleValidationError(w, r, "server_seed", "server_seed is required when client_seed or nonce is set")
			return
		}
		out = life.RandomGrid(s.size, s.size, s.newSource())
	}

	s.audit.LogGeneration(requestID, true, nil, out)
	s.ops.record("random", start, true)
	s.writeGrid(w, out)
}

// handleStats summarises the posted board.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := s.readBody(w, r)
	if err != nil {
		s.ops.record("stats", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}
	g, err := DecodeGrid(body, s.size)
	if err != nil {
		s.ops.record("stats", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if g == nil {
		s.ops.record("stats", start, false)
		s.errorHandler.HandleValidationError(w, r, "grid", "grid is required")
		return
	}

	s.ops.record("stats", start, true)
	s.writeJSON(w, http.StatusOK, StatsResponse{
		Summary:       stats.Summarize(g),
		EngineVersion: EngineVersion,
	})
}

// handleConfig reports the fixed board configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ConfigResponse{
		GridSize:      s.size,
		TokenRequired: s.token != "",
		EngineVersion: EngineVersion,
	})
}

// handleScriptSeed builds a board from a user cell() script.
func (s *Server) handleScriptSeed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetReqID(r.Context())

	body, err := s.readBody(w, r)
	if err != nil {
		s.ops.record("seed_script", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}

	var req ScriptSeedRequest
	if err := decodeStrict(body, &req); err != nil {
		s.ops.record("seed_script", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := ValidateScriptSeedRequest(&req); err != nil {
		s.ops.record("seed_script", start, false)
		s.errorHandler.HandleValidationError(w, r, "source", err.Error())
		return
	}

	vm := scripting.NewVM(s.scriptTTL)
	g, err := vm.Grid(req.Source, s.size)
	if err != nil {
		s.ops.record("seed_script", start, false)
		if errors.Is(err, scripting.ErrTimeout) {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		s.errorHandler.HandleError(w, r, NewError(ErrTypeScript, "Script evaluation failed").
			WithRequestID(requestID).
			WithCause(err).
			Build())
		return
	}

	s.audit.LogGeneration(requestID, true, nil, g)
	s.ops.record("seed_script", start, true)
	setStatsHeaders(w, g)
	s.writeJSON(w, http.StatusOK, ScriptSeedResponse{Grid: g, Logs: vm.Logs()})
}

// handleListPatterns lists the pattern catalog.
func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}
	patterns, err := s.db.ListPatterns(r.Context())
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PatternsResponse{
		Patterns:      patterns,
		EngineVersion: EngineVersion,
	})
}

// handleGetPattern returns one catalog entry.
func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}
	p, err := s.db.GetPattern(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// handlePatternGrid returns a catalog pattern centred on an empty board,
// ready to post to /api/v1/generation.
func (s *Server) handlePatternGrid(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.requireDB(w, r) {
		return
	}
	p, err := s.db.GetPattern(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.ops.record("pattern_grid", start, false)
		s.errorHandler.HandleError(w, r, err)
		return
	}
	g, err := life.Place(s.size, s.size, p.Cells)
	if err != nil {
		s.ops.record("pattern_grid", start, false)
		s.errorHandler.HandleValidationError(w, r, "name", err.Error())
		return
	}
	s.ops.record("pattern_grid", start, true)
	s.writeGrid(w, g)
}

// handleCreatePattern adds a user pattern to the catalog.
func (s *Server) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w, r) {
		return
	}
	requestID := middleware.GetReqID(r.Context())

	body, err := s.readBody(w, r)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	var req CreatePatternRequest
	if err := decodeStrict(body, &req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if err := ValidateCreatePatternRequest(&req, s.size); err != nil {
		s.errorHandler.HandleValidationError(w, r, "pattern", err.Error())
		return
	}

	p := &store.Pattern{
		Name:        req.Name,
		Description: req.Description,
		Cells:       req.Cells,
	}
	if err := s.db.SavePattern(r.Context(), p); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.audit.LogAuditEvent(requestID, "create_pattern", "pattern:"+p.Name, "success", map[string]interface{}{
		"cells": len(p.Cells),
	})
	s.writeJSON(w, http.StatusCreated, p)
}

// requireDB writes a service_unavailable error when the catalog is not configured.
func (s *Server) requireDB(w http.ResponseWriter, r *http.Request) bool {
	if s.db != nil {
		return true
	}
	s.errorHandler.HandleError(w, r, NewError(ErrTypeServiceUnavailable, "pattern catalog is not configured").Build())
	return false
}

// readBody reads the request body up to a limit proportional to the board size.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := int64(s.size*s.size*4 + 64*1024)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedInput, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrMalformedInput, err)
	}
	return body, nil
}

// writeGrid writes a bare board as the response body.
func (s *Server) writeGrid(w http.ResponseWriter, g life.Grid) {
	setStatsHeaders(w, g)
	s.writeJSON(w, http.StatusOK, g)
}

func setStatsHeaders(w http.ResponseWriter, g life.Grid) {
	sum := stats.Summarize(g)
	w.Header().Set("X-Life-Population", strconv.Itoa(sum.Population))
	w.Header().Set("X-Life-Density", sum.Density.String())
}

// decodeStrict decodes a JSON object rejecting unknown fields.
func decodeStrict(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nil
}
