package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDHeader carries the authenticated user's ID, set by the
// authenticating reverse proxy in front of this service.
const UserIDHeader = "X-User-ID"

// GetUserIDFromContext returns the request's authenticated user ID.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequireUser rejects requests without a user identity and stores the ID
// in the request context for downstream handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextualLoggerMiddleware embeds a request-scoped logger carrying a
// request ID, and echoes the ID back to the client.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		reqLogger := logger.L.With(
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), reqLogger)))
	})
}
