package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"github.com/MJE43/life-tick-go/internal/life"
)

// AuditLogger writes one line per board operation. Boards are identified by
// a short fingerprint; raw payloads are never logged.
type AuditLogger struct {
	logger *log.Logger
}

// NewAuditLogger creates an audit logger writing to w, or stdout when w is nil.
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		w = os.Stdout
	}
	return &AuditLogger{
		logger: log.New(w, "[AUDIT] ", log.LstdFlags|log.LUTC),
	}
}

// LogGeneration records one generation request.
func (al *AuditLogger) LogGeneration(requestID string, bootstrap bool, in, out life.Grid) {
	inFingerprint := "none"
	if in != nil {
		inFingerprint = fingerprint(in)
	}
	al.logger.Printf(
		"generation request_id=%s bootstrap=%t input=%s output=%s population=%d engine_version=%s timestamp=%s",
		requestID,
		bootstrap,
		inFingerprint,
		fingerprint(out),
		out.Population(),
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogAuditEvent logs system events such as health checks and catalog changes.
func (al *AuditLogger) LogAuditEvent(requestID, action, resource, outcome string, details map[string]interface{}) {
	al.logger.Printf(
		"audit_event request_id=%s action=%s resource=%s outcome=%s details=%+v engine_version=%s timestamp=%s",
		requestID,
		action,
		resource,
		outcome,
		details,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs rejected input and failed authentication.
func (al *AuditLogger) LogSecurityEvent(requestID, eventType, description string, context map[string]interface{}, remoteAddr string) {
	al.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID,
		eventType,
		description,
		context,
		remoteAddr,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemStartup logs the server configuration at startup.
func (al *AuditLogger) LogSystemStartup(details map[string]interface{}) {
	al.logger.Printf(
		"system_startup details=%+v engine_version=%s git_commit=%s build_time=%s timestamp=%s",
		details,
		EngineVersion,
		GitCommit,
		BuildTime,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// fingerprint returns the first 16 hex characters of the SHA-256 of the
// board's JSON encoding.
func fingerprint(g life.Grid) string {
	data, err := json.Marshal(g)
	if err != nil {
		return "unencodable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
