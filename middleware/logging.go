package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"farmfinance/backend/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-ID"

const requestIDKey contextKey = "request_id"

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestID reuses an incoming X-Request-ID or assigns a new one, echoes it
// on the response and attaches a request-scoped logger to the context.
func RequestID(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey, id)
			ctx = logger.WithContext(ctx, base.With().Str("request_id", id).Logger())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger logs one line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		log := logger.FromContext(r.Context())
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Recovery turns a panic into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log := logger.FromContext(r.Context())
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				writeFailure(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
