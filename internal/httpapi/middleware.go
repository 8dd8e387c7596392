/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"compress/gzip"
	"context"
	"crypto/subtle"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// requestIDHeader is echoed back so operators can correlate a CLI call with
// a daemon log line.
const requestIDHeader = "X-Request-Id"

// RequestID stamps every inbound request with a fresh UUID, echoes it in the
// response header, and makes it available to downstream handlers and to the
// Recover middleware's panic log line.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id stamped by RequestID, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Middleware wraps a handler with one concern.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares in the order given, so the first one listed is
// the outermost (runs first on the way in, last on the way out) — the same
// composition order the teacher's server.go builds its middleware stack in.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover turns a panicking handler into a 500 instead of taking down the
// whole listener goroutine.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[httpapi] panic handling %s %s (request %s): %v\n%s", r.Method, r.URL.Path, RequestIDFromContext(r.Context()), rec, debug.Stack())
					writeError(w, http.StatusInternalServerError, "internal_error", "the request could not be completed")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// knownIDPrefixes lists routes whose trailing segment is a miner id, used to
// normalize metrics route keys.
var knownIDPrefixes = []string{"/api/miners", "/api/logs"}

// RequestMetrics records per-route latency into mgr, normalizing dynamic
// segments so one miner's requests don't fragment the metrics table.
// Adapted from the teacher's internal/ipc MetricsManager wiring in server.go.
func RequestMetrics(mgr *MetricsManager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			key := mgr.NormalizeRoute(r.Method, r.URL.Path, knownIDPrefixes)
			mgr.Record(key, time.Since(start))
		})
	}
}

type compressionWriter struct {
	http.ResponseWriter
	io.Writer
}

func (w compressionWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

// Compression negotiates brotli or gzip via Accept-Encoding, preferring
// brotli. Adapted from the teacher's server.go CompressionMiddleware.
func Compression() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acceptEncoding := r.Header.Get("Accept-Encoding")

			switch {
			case strings.Contains(acceptEncoding, "br"):
				w.Header().Set("Content-Encoding", "br")
				w.Header().Add("Vary", "Accept-Encoding")
				bw := brotli.NewWriter(w)
				defer bw.Close()
				next.ServeHTTP(compressionWriter{ResponseWriter: w, Writer: bw}, r)
			case strings.Contains(acceptEncoding, "gzip"):
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Add("Vary", "Accept-Encoding")
				gz := gzip.NewWriter(w)
				defer gz.Close()
				next.ServeHTTP(compressionWriter{ResponseWriter: w, Writer: gz}, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// apiKeyHeader is the header operators present their key in.
const apiKeyHeader = "X-Minerd-Api-Key"

// Auth rejects requests missing a constant-time match against apiKey. An
// empty apiKey disables auth entirely (useful for local development).
// /api/health is always let through without a key.
func Auth(apiKey string) Middleware {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		expected := []byte(apiKey)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}
			got := []byte(r.Header.Get(apiKeyHeader))
			if len(got) != len(expected) || subtle.ConstantTimeCompare(got, expected) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit enforces a per-IP token bucket via tollbooth, promoted from an
// indirect teacher dependency to a direct one.
func RateLimit(perSecond float64, burst int) Middleware {
	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetBurst(burst)
	lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"rate_limited","message":"too many requests"}`)

	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}
