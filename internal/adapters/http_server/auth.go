package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kingsleyhub-dev/rafiki-house-stays-sub000/internal/domain"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserID returns the authenticated user id placed in the context by
// RequireAdmin, or "".
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// RequireAdmin verifies the bearer credential and checks the caller holds
// the admin role before any provider call is made. Missing/invalid token
// gives 401; a valid non-admin caller gives 403.
func RequireAdmin(verifier domain.TokenVerifier, roles domain.RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authorization header required", "")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format", "")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token", "")
				return
			}

			ok, err := roles.HasRole(r.Context(), userID, "admin")
			if err != nil {
				log.Error().Err(err).Str("user", userID).Msg("role lookup failed")
				writeError(w, http.StatusInternalServerError, "role lookup failed", err.Error())
				return
			}
			if !ok {
				writeError(w, http.StatusForbidden, "admin role required", "")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}
