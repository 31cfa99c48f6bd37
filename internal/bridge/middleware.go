package bridge

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	applog "tubetext/internal/log"
)

const headerRequestID = "X-Request-ID"

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// requestID tags every request, and the backend calls it triggers, with one ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(applog.ContextWithRequestID(r.Context(), id)))
	})
}

// accessLog records one line per request with status and latency.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

			reqLogger := applog.WithContext(r.Context(), logger)
			reqLogger.Debug().
				Str("method", r.Method).
				Str(applog.FieldPath, r.URL.Path).
				Int(applog.FieldStatus, status).
				Dur(applog.FieldDuration, time.Since(start)).
				Msg("bridge request")
		})
	}
}

// cors allows the configured browser origins; requests without an Origin
// header are tools or same-origin pages and pass through.
func cors(origins *originSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && origins.allows(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID)
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rejectForeignOrigin refuses requests that a browser sent from a page outside
// the allowed origins. Requests without an Origin header pass through.
func rejectForeignOrigin(allowed func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(r) {
				writeJSON(w, http.StatusForbidden, errorBody{
					Error:   "forbidden_origin",
					Message: "Requests from this origin are not allowed",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit caps requests per client IP using a sliding window.
func rateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(time.Minute.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please try again later.",
			})
		}),
	)
}

type originSet struct {
	allowAll bool
	allowed  map[string]bool
}

func newOriginSet(origins []string) *originSet {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	set := &originSet{allowed: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			set.allowAll = true
		}
		set.allowed[origin] = true
	}
	return set
}

func (s *originSet) allows(origin string) bool {
	return s.allowAll || s.allowed[origin]
}
