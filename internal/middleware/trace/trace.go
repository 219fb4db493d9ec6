// Package trace tags each request with an ID and logs its outcome.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	applog "rentledger/internal/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// HeaderRequestID is echoed back and honored when the caller sets it.
const HeaderRequestID = "X-Request-ID"

// Middleware assigns request IDs and logs completed requests.
type Middleware struct {
	logger   *applog.StructuredLogger
	requests atomic.Int64
	failures atomic.Int64
}

func NewMiddleware(logger *applog.Logger) *Middleware {
	return &Middleware{logger: applog.NewStructuredLogger(logger)}
}

// Handler wraps next. The request ID lands in the context before next runs,
// so loggers built downstream can pick it up with RequestID.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = GenerateRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, id)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.requests.Add(1)
		if rw.status >= 500 {
			m.failures.Add(1)
		}
		m.logger.LogHTTPEnd(ctx, r, rw.status, time.Since(start).Milliseconds(), ClientIP(r))
	})
}

// Stats returns the number of requests served and how many ended in 5xx.
func (m *Middleware) Stats() (requests, failures int64) {
	return m.requests.Load(), m.failures.Load()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// RequestID returns the ID stored by Handler, or "".
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// remote address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
