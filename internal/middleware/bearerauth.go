// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier checks a bearer token and returns the user id it was
// issued for.
type TokenVerifier interface {
	Verify(token string) (int, error)
}

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header, verifies the
// token, and stores the resulting user id in the request context so it
// can be used downstream as the authenticated identity. Requests without
// a valid token are rejected with 401 and a JSON detail body.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// GetUserIDFromContext extracts the authenticated user id from the
// request context. Returns 0 if not found.
func GetUserIDFromContext(ctx context.Context) int {
	val := ctx.Value(userKey)
	if id, ok := val.(int); ok {
		return id
	}
	return 0
}
