package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// TokenHeader carries the API token when one is configured.
const TokenHeader = "X-Life-Token"

// LoggingMiddleware logs request start and completion
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.logger.Printf(
			"request_start method=%s path=%s request_id=%s remote_addr=%s user_agent=%q",
			r.Method,
			r.URL.Path,
			requestID,
			r.RemoteAddr,
			r.UserAgent(),
		)

		next.ServeHTTP(ww, r)

		s.logger.Printf(
			"request_completed method=%s path=%s status=%d duration=%v request_id=%s bytes_written=%d",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			requestID,
			ww.BytesWritten(),
		)
	})
}

// CORSMiddleware lets a browser client on another origin poll the service
func (s *Server) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Game-Of-Life, "+TokenHeader)
		w.Header().Set("Access-Control-Expose-Headers", "X-Life-Population, X-Life-Density, X-Error-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// TokenMiddleware rejects requests without the configured token. It is a
// no-op when no token is configured.
func (s *Server) TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			s.errorHandler.HandleError(w, r, NewError(ErrTypeUnauthorized, "missing or invalid "+TokenHeader).
				WithRequestID(middleware.GetReqID(r.Context())).
				Build())
			return
		}
		next.ServeHTTP(w, r)
	})
}
