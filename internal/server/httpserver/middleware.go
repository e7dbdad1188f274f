package httpserver

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/sesskeep-go/internal/core/domain"
	"github.com/yndnr/sesskeep-go/internal/telemetry/logger"
	"github.com/yndnr/sesskeep-go/internal/telemetry/metric"
)

const requestIDHeader = "X-Request-ID"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler. The first middleware in the
// list becomes the outermost wrapper.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID ensures every request carries a request ID. A client-supplied
// X-Request-ID is honored, otherwise a fresh one is generated. The ID is
// echoed on the response, stored in the request context, and mirrored onto
// the request header so downstream handlers can read it without importing
// this package.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = "req-" + strings.ToLower(ulid.Make().String())
				r.Header.Set(requestIDHeader, requestID)
			}
			w.Header().Set(requestIDHeader, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover converts panics in downstream handlers into 500 responses
// instead of tearing down the connection.
func Recover(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						"error", fmt.Sprint(rec),
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", r.Header.Get(requestIDHeader),
					)
					writeMiddlewareError(w, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Audit logs one line per completed request.
func Audit(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", getClientIP(r),
				"request_id", r.Header.Get(requestIDHeader),
			)
		})
	}
}

// RateLimit throttles requests per client IP using a token bucket.
// Buckets refill at rps tokens per second up to burst.
func RateLimit(rps float64, burst int) Middleware {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(getClientIP(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeMiddlewareError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Code, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS handles cross-origin requests for the allowed origins. An entry
// of "*" allows any origin.
func CORS(allowedOrigins []string) Middleware {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Observe records request counts and latencies.
func Observe(m *metric.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.ObserveHTTPRequest(r.Method, routeLabel(r.URL.Path), rw.statusCode, time.Since(start))
		})
	}
}

// routeLabel collapses path parameters so metric label cardinality stays
// bounded regardless of how many sessions exist.
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "sks-"):
			segments[i] = "{id}"
		case i > 0 && segments[i-1] == "attributes" && seg != "":
			segments[i] = "{key}"
		}
	}
	return strings.Join(segments, "/")
}

// responseWriter captures the status code written downstream.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

// getClientIP extracts the client address, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeMiddlewareError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"code":%q,"message":%q,"timestamp":%d}`, code, message, time.Now().UnixMilli())
}
