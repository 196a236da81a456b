// Package api wires HTTP routes to handlers and applies the shared
// middleware chain.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/maka4h/user-service/internal/api/handlers"
	"github.com/maka4h/user-service/internal/api/middleware"
	"github.com/maka4h/user-service/internal/config"
	"github.com/maka4h/user-service/internal/domain/users"
	"github.com/maka4h/user-service/internal/metrics"
)

// NewRouter builds the HTTP handler tree. Dependencies are constructed by
// the process entry point and injected; the router owns no connections.
func NewRouter(cfg config.Config, logger zerolog.Logger, service *users.Service, health *handlers.HealthChecker) http.Handler {
	usersHandler := handlers.NewUsersHandler(service, cfg.Environment)

	mux := http.NewServeMux()
	mux.Handle("/health", health.Health())
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz())
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/api/v1/users", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(usersHandler.List),
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	}))
	mux.Handle("/api/v1/users/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(usersHandler.Get),
		http.MethodDelete: http.HandlerFunc(usersHandler.Delete),
	}))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
