package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maka4h/user-service/internal/requestid"
)

// CorrelationID assigns each request a correlation ID (honoring an incoming
// X-Request-ID from a proxy) and injects a request-scoped logger into the
// context. The ID also travels on published domain events.
func CorrelationID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", id)

			reqLogger := logger.With().Str("request_id", id).Logger()

			ctx := requestid.WithContext(r.Context(), id)
			ctx = reqLogger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
