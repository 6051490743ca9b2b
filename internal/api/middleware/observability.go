package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Observability adds OpenTelemetry tracing and metrics to HTTP requests.
// Everything between it and the ServeMux must pass the request through
// unchanged so the matched pattern is visible after dispatch.
func Observability(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			rw := newStatusRecorder(w)
			req := r.WithContext(ctx)
			start := time.Now()

			next.ServeHTTP(rw, req)

			// The mux records the matched pattern on the request it was given.
			route := routeOf(req)
			span.SetName(route)
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			observability.SetSpanAttributes(span,
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
		})
	}
}
