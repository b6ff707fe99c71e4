package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/litewiki/litewiki-server/internal/auth"
	"github.com/litewiki/litewiki-server/internal/http/response"
	"github.com/litewiki/litewiki-server/internal/ratelimit"
)

// envelopeVersion is the wire version of the response envelope. Bump only
// when the envelope structure changes in a client-visible way.
const envelopeVersion = 1

type ctxKey string

const (
	sessionKey   ctxKey = "session"
	requestIDKey ctxKey = "request_id"
)

// sessionMiddleware resolves a Bearer token to an authenticated session.
// Missing or invalid tokens yield an anonymous session rather than an
// error; handlers that need authentication check the session themselves.
func sessionMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.Anonymous()

			if header := r.Header.Get("Authorization"); header != "" {
				if token, ok := strings.CutPrefix(header, "Bearer "); ok && verifier != nil {
					if user, err := verifier.Verify(r.Context(), token); err == nil {
						session = auth.ForUser(user)
					}
				}
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session stored by sessionMiddleware, or an
// anonymous session when the middleware did not run.
func sessionFrom(ctx context.Context) auth.Session {
	if session, ok := ctx.Value(sessionKey).(auth.Session); ok {
		return session
	}
	return auth.Anonymous()
}

// requestIDMiddleware assigns each request a unique ID, echoed back in the
// X-Request-ID header and available to logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request with method, path, status, and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id, ok := r.Context().Value(requestIDKey).(string); ok {
				attrs = append(attrs, "request_id", id)
			}
			logger.Info("request", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// rateLimitMiddleware limits requests per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func rateLimitMiddleware(limiter *ratelimit.KeyedLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED",
					"too many requests, please try again later", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the client.
		if ip, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(ip)
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// RemoteAddr includes the port.
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}

// envelope is the versioned wire structure wrapping every API response.
type envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps response bodies in a versioned envelope so
// clients can distinguish success payloads from errors uniformly.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if status >= "400" {
		if apiErr, ok := v.(*APIError); ok {
			if apiErr.Code == "" && apiErr.Details == nil {
				return &envelope{V: envelopeVersion, Success: false, Error: apiErr.Message}, nil
			}
			return &envelope{
				V:       envelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		if err, ok := v.(error); ok {
			return &envelope{V: envelopeVersion, Success: false, Error: err.Error()}, nil
		}
	}

	return &envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
