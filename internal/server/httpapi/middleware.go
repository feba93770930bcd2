package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext returns the token claims attached by requireRole.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// requireRole validates the bearer token and checks that it carries the given
// role. The token is the sole source of truth here: the store is never
// consulted, so role changes do not affect tokens already issued.
func (s *Server) requireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				s.writeError(w, http.StatusUnauthorized, "Missing bearer token.")
				return
			}

			claims, err := s.issuer.Parse(tokenString)
			if err != nil {
				s.writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			if !claims.HasRole(role) {
				s.writeError(w, http.StatusForbidden, "Insufficient role.")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
