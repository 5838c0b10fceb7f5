package api

import (
	"github.com/MJE43/life-tick-go/internal/engine"
	"github.com/MJE43/life-tick-go/internal/life"
	"github.com/MJE43/life-tick-go/internal/stats"
	"github.com/MJE43/life-tick-go/internal/store"
)

// APIError represents a structured error response with context
type APIError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e APIError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input errors
	ErrTypeMalformedInput    = "malformed_input"
	ErrTypeDimensionMismatch = "dimension_mismatch"
	ErrTypeValidation        = "validation_error"
	ErrTypeScript            = "script_error"

	// Catalog errors
	ErrTypePatternNotFound = "pattern_not_found"
	ErrTypePatternExists   = "pattern_exists"

	// Access errors
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeNotFound     = "not_found"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryInput   ErrorCategory = "input"
	CategoryCatalog ErrorCategory = "catalog"
	CategoryAccess  ErrorCategory = "access"
	CategorySystem  ErrorCategory = "system"
	CategoryTimeout ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeMalformedInput, ErrTypeDimensionMismatch, ErrTypeValidation, ErrTypeScript:
		return CategoryInput
	case ErrTypePatternNotFound, ErrTypePatternExists:
		return CategoryCatalog
	case ErrTypeUnauthorized, ErrTypeNotFound:
		return CategoryAccess
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// RandomRequest optionally selects the deterministic board source.
type RandomRequest struct {
	engine.Seeds
	Nonce uint64 `json:"nonce"`
}

// StatsResponse wraps a board summary
type StatsResponse struct {
	stats.Summary
	EngineVersion string `json:"engine_version"`
}

// PatternsResponse lists the catalog
type PatternsResponse struct {
	Patterns      []store.Pattern `json:"patterns"`
	EngineVersion string          `json:"engine_version"`
}

// CreatePatternRequest adds a user pattern to the catalog
type CreatePatternRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Cells       []life.Point `json:"cells"`
}

// ScriptSeedRequest builds a board from a cell() script
type ScriptSeedRequest struct {
	Source string `json:"source"`
}

// ScriptSeedResponse carries the board plus anything the script logged
type ScriptSeedResponse struct {
	Grid life.Grid `json:"grid"`
	Logs []string  `json:"logs,omitempty"`
}

// ConfigResponse describes the fixed board configuration
type ConfigResponse struct {
	GridSize      int    `json:"grid_size"`
	TokenRequired bool   `json:"token_required"`
	EngineVersion string `json:"engine_version"`
}
