package middleware

import (
	"net/http"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/metrics"
	"github.com/gorilla/mux"
)

// MetricsMiddleware labels requests by route template so path parameters do
// not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveHTTPRequest(routeTemplate(r), r.Method, wrapped.status(), time.Since(start))
		})
	}
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return template
}
