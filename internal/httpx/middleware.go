package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/zenitmed/siteapi/internal/logger"
	"github.com/zenitmed/siteapi/internal/models"
)

type contextKey string

const clientIPContextKey contextKey = "client_ip"

// ExtractClientIP extracts the client IP address from the request.
// Checks CF-Connecting-IP first (Cloudflare), then X-Forwarded-For and
// X-Real-IP for other proxies, finally RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		return cf
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP in the comma-separated list
		if before, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(before)
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr, stripping port
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}

// ClientIPFromContext extracts the client IP from the request context.
// This should be called from handlers wrapped by ClientIPMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}

// ClientIPMiddleware extracts and stores the client IP in the request
// context for session tracking and audit logging.
func ClientIPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ExtractClientIP(r)
			ctx := context.WithValue(r.Context(), clientIPContextKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or behind a TLS-terminating proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// statusRecorder captures the response status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AccessLogMiddleware writes one app_logs row per API request through the
// recorder. Streaming endpoints are skipped so a long-lived SSE connection
// doesn't hold the wrapper.
func AccessLogMiddleware(recorder *logger.Recorder, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := models.LogLevelInfo
			switch {
			case rec.status >= 500:
				level = models.LogLevelError
			case rec.status >= 400:
				level = models.LogLevelWarn
			}

			recorder.Record(r.Context(), models.LogRecord{
				Level:     level,
				Message:   r.Method + " " + r.URL.Path,
				Context:   "api",
				IPAddress: ExtractClientIP(r),
				UserAgent: r.UserAgent(),
				Path:      r.URL.Path,
				Metadata: map[string]any{
					"method":      r.Method,
					"status":      rec.status,
					"duration_ms": time.Since(started).Milliseconds(),
				},
			})
		})
	}
}
