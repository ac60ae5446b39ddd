package middleware

import (
	"context"
	"net/http"
)

type routeSetter interface {
	SetRoute(string)
}

// WithRoute records the matched mux pattern for the request log, the
// metrics labels and handlers that log through GetRoute.
func WithRoute(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if setter, ok := w.(routeSetter); ok {
			setter.SetRoute(pattern)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RouteKey, pattern)))
	})
}

// GetRoute returns the pattern stored by WithRoute, or "".
func GetRoute(ctx context.Context) string {
	route, _ := ctx.Value(RouteKey).(string)
	return route
}
