package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnemograph/mnemo/internal/metrics"
)

// Metrics returns middleware that records request counts and latency
// into the injected sink, labeled by the matched chi route pattern so
// path parameters do not explode cardinality.
func Metrics(sink *metrics.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			sink.HTTPRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
