package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/life-tick-go/internal/scripting"
	"github.com/MJE43/life-tick-go/internal/store"
)

// ErrorBuilder assembles an APIError fluently:
//
//	NewError(ErrTypeValidation, "bad pattern").WithContext("field", "cells").Build()
type ErrorBuilder struct {
	err APIError
}

func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{err: APIError{Type: errType, Message: message}}
}

func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if eb.err.Context == nil {
		eb.err.Context = make(map[string]interface{})
	}
	eb.err.Context[key] = value
	return eb
}

func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.err.RequestID = requestID
	return eb
}

// WithCause stores err's message under the "cause" context key.
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err == nil {
		return eb
	}
	return eb.WithContext("cause", err.Error())
}

// Build stamps the error with the current time.
func (eb *ErrorBuilder) Build() APIError {
	out := eb.err
	out.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return out
}

// ErrorHandler is the single place handlers send failures to. Rejected
// boards and tokens are also copied to the audit log.
type ErrorHandler struct {
	logger *log.Logger
	audit  *AuditLogger
}

func NewErrorHandler(logger *log.Logger, audit *AuditLogger) *ErrorHandler {
	return &ErrorHandler{logger: logger, audit: audit}
}

// HandleError maps err onto a status code and error type and writes the response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)

	var apiErr APIError
	if errors.As(err, &apiErr) {
		if apiErr.RequestID == "" {
			apiErr.RequestID = middleware.GetReqID(r.Context())
		}
	} else {
		apiErr = NewError(errType, err.Error()).
			WithRequestID(middleware.GetReqID(r.Context())).
			Build()
	}

	if GetErrorCategory(apiErr.Type) == CategoryInput || apiErr.Type == ErrTypeUnauthorized {
		eh.audit.LogSecurityEvent(apiErr.RequestID, apiErr.Type, apiErr.Message, map[string]interface{}{
			"path": r.URL.Path,
		}, r.RemoteAddr)
	}

	eh.logError(r, apiErr, status)
	eh.writeErrorResponse(w, status, apiErr)
}

// HandleValidationError reports a well-formed request whose field value is unusable.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	eh.HandleError(w, r, NewError(ErrTypeValidation, "Validation failed: "+message).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("field", field).
		Build())
}

// classify maps known errors onto HTTP status and error type.
func classify(err error) (int, string) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return statusForType(apiErr.Type), apiErr.Type
	}
	switch {
	case errors.Is(err, ErrMalformedInput):
		return http.StatusBadRequest, ErrTypeMalformedInput
	case errors.Is(err, ErrDimensionMismatch):
		return http.StatusUnprocessableEntity, ErrTypeDimensionMismatch
	case errors.Is(err, store.ErrPatternNotFound):
		return http.StatusNotFound, ErrTypePatternNotFound
	case errors.Is(err, store.ErrPatternExists):
		return http.StatusConflict, ErrTypePatternExists
	case errors.Is(err, scripting.ErrTimeout):
		return http.StatusRequestTimeout, ErrTypeTimeout
	default:
		return http.StatusInternalServerError, ErrTypeInternal
	}
}

func statusForType(errType string) int {
	switch errType {
	case ErrTypeMalformedInput, ErrTypeValidation, ErrTypeScript:
		return http.StatusBadRequest
	case ErrTypeDimensionMismatch:
		return http.StatusUnprocessableEntity
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeNotFound, ErrTypePatternNotFound:
		return http.StatusNotFound
	case ErrTypePatternExists:
		return http.StatusConflict
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	case ErrTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// logError writes one line per failed request; 4xx at WARN, 5xx at ERROR.
func (eh *ErrorHandler) logError(r *http.Request, apiErr APIError, status int) {
	level := "WARN"
	if status >= http.StatusInternalServerError {
		level = "ERROR"
	}
	eh.logger.Printf("request_failed level=%s status=%d type=%s category=%s request_id=%s route=%q msg=%q ctx=%v",
		level, status, apiErr.Type, GetErrorCategory(apiErr.Type), apiErr.RequestID,
		r.Method+" "+r.URL.Path, apiErr.Message, apiErr.Context)
}

// writeErrorResponse mirrors the type and category into headers so clients
// can branch without decoding the body.
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, apiErr APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(apiErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		eh.logger.Printf("error_encode_failed request_id=%s err=%v", apiErr.RequestID, err)
	}
}

// RecoveryHandler turns a handler panic into an internal_error response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			reqID := middleware.GetReqID(r.Context())
			eh.logger.Printf("panic_recovered request_id=%s route=%q panic=%v", reqID, r.Method+" "+r.URL.Path, rvr)
			eh.writeErrorResponse(w, http.StatusInternalServerError,
				NewError(ErrTypeInternal, "Internal server error").WithRequestID(reqID).Build())
		}()
		next.ServeHTTP(w, r)
	})
}
