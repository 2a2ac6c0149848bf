// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/indranuj17/FeedlinerX/internal/auth"
	"github.com/indranuj17/FeedlinerX/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionAuth is a middleware that requires a valid session token.
//
// The token is taken from an "Authorization: Bearer" header or, when the
// header is absent, from the cookie named cookieName. On success the session
// user is stored in the request context; otherwise the request is answered
// with 401 and a JSON error body.
func SessionAuth(secret []byte, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				unauthenticated(w)
				return
			}
			user, err := auth.ParseToken(token, secret)
			if err != nil {
				unauthenticated(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), user)))
		})
	}
}

// TokenFromRequest returns the bearer token or session cookie value.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Not authenticated",
	})
}

// WithSession stores user in ctx.
func WithSession(ctx context.Context, user models.SessionUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// SessionFromContext extracts the session user from the request context.
func SessionFromContext(ctx context.Context) (models.SessionUser, bool) {
	user, ok := ctx.Value(userKey).(models.SessionUser)
	return user, ok
}
