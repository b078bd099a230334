package handlers

import (
	"context"
	"net/http"
	"strings"

	"gitlab.com/develevate.net/internal/core/ports/primary"
	"gitlab.com/develevate.net/internal/handlers/response"
)

type contextKey string

const userIDKey contextKey = "userID"

type MiddlewareProvider struct {
	verifier primary.TokenVerifier
	logger   primary.Logger
}

func New(verifier primary.TokenVerifier, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		verifier: verifier,
		logger:   logger,
	}
}

func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.WriteError(w, response.ErrorMessage{
				Message:    "Authorization header missing",
				StatusCode: http.StatusUnauthorized,
			})
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		userID, err := m.verifier.VerifyToken(r.Context(), tokenString)
		if err != nil {
			m.logger.Debug("Rejected token", "error", err)
			response.WriteError(w, response.ErrorMessage{
				Message:    "Invalid token",
				StatusCode: http.StatusUnauthorized,
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID stores the authenticated user ID in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
