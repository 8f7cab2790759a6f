package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/middleware"
)

const unmatchedEndpoint = "unmatched"

// MetricsMiddleware tracks HTTP request metrics
func MetricsMiddleware(metrics interfaces.MetricsCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := middleware.NewStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			labels := map[string]string{
				"method":      r.Method,
				"endpoint":    endpointLabel(r),
				"status_code": strconv.Itoa(wrapped.StatusCode),
			}

			metrics.IncrementCounter("http_requests_total", labels)
			metrics.RecordDuration("http_request_duration_seconds", time.Since(start).Seconds(), labels)
		})
	}
}

// endpointLabel uses the route template to keep label cardinality bounded
func endpointLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedEndpoint
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedEndpoint
	}
	return template
}
