package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/inboxinvader/inboxinvader/internal/auth"
)

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

// Authenticate validates the bearer token and stores the caller's
// identity in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "Authorization token is missing")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokenSvc.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				unauthorized(w, "Token has expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID retrieves the authenticated user's ID from context
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// Username retrieves the authenticated user's name from context
func Username(ctx context.Context) string {
	if name, ok := ctx.Value(UsernameKey).(string); ok {
		return name
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
