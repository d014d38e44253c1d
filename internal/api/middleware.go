package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth validates the Bearer token and stashes the verified user id in
// the request context.
func RequireAuth(tokens TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"success": false,
					"error":   "User authentication required",
				})
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"success": false,
					"error":   "User authentication required",
				})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFrom returns the verified user id set by RequireAuth, or "" when the
// middleware did not run.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
