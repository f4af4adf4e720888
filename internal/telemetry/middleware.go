package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// responseWriter captures status code and response size. It forwards Flush
// so that SSE responses are not buffered.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += int64(size)
	return size, err
}

// HTTPMetricsMiddleware records request count, duration, sizes and in-flight
// requests. It must run inside the chi router so the route pattern is known.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}

			next.ServeHTTP(rw, r)

			// Group by route pattern so that unknown paths do not create series.
			endpoint := "unmatched"
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}

			metrics.RecordHTTPRequest(
				r.Method,
				endpoint,
				strconv.Itoa(rw.statusCode),
				time.Since(start),
				requestSize,
				rw.size,
			)
		})
	}
}
