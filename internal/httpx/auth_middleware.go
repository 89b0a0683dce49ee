package httpx

import (
	"net/http"
	"strings"

	"cherryblossom/internal/platform/crypto"
)

// AdminMiddleware admits requests carrying a valid bearer token with the
// ADMIN role.
func AdminMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if secret == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token", nil)
				return
			}
			if claims.Role != crypto.RoleAdmin {
				JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
				return
			}

			ctx := ContextWithSubject(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
