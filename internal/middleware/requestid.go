// Package middleware provides HTTP middleware shared by the REST API and the
// MCP tool endpoint.
package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	maxRequestIDLen = 128
)

// RequestID is HTTP middleware that extracts X-Request-ID from the request
// header or generates a new one. The ID is stored in the context and set
// on the response header. An X-User-ID header, when present, is stored in
// the context as well so every log line of the request carries it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = generateID()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		if uid := strings.TrimSpace(r.Header.Get(headerUserID)); uid != "" {
			ctx = logger.WithUserID(ctx, uid)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateID returns a random UUID without dashes (32 hex chars).
func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
