package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/develevate.net/internal/adapter/logging"
	"gitlab.com/develevate.net/internal/handlers"
)

type verifierFunc func(ctx context.Context, token string) (string, error)

func (f verifierFunc) VerifyToken(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

func TestJWTMiddleware(t *testing.T) {
	verifier := verifierFunc(func(ctx context.Context, token string) (string, error) {
		if token != "good" {
			return "", errors.New("bad token")
		}
		return "user-1", nil
	})
	mw := handlers.New(verifier, logging.NewNopLogger())

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = handlers.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := mw.JWTMiddleware(next)

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", "Bearer good", http.StatusTeapot, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, seen)
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := handlers.UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = handlers.UserIDFromContext(handlers.WithUserID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := handlers.UserIDFromContext(handlers.WithUserID(context.Background(), "u"))
	assert.True(t, ok)
	assert.Equal(t, "u", id)
}
