package middleware

import (
	"context"
	"net/http"
	"strings"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/http/response"
	"mobile-auth-service/internal/observability"
	"mobile-auth-service/internal/security"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// AuthMiddleware requires a bearer token in the Authorization header. A
// missing or malformed header and a failed parse are distinct error codes;
// within a failed parse, expired and forged are not distinguished.
func AuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				observability.RecordTokenValidation(r.Context(), "missing_header")
				response.Error(w, r, http.StatusUnauthorized, domain.ErrCodeMissingAuthHeader, "Authorization header missing or malformed", nil)
				return
			}
			raw := strings.TrimSpace(auth[7:])
			claims, err := jwtMgr.ParseSessionToken(raw)
			if err != nil {
				observability.RecordTokenValidation(r.Context(), "invalid_token")
				response.Error(w, r, http.StatusUnauthorized, domain.ErrCodeInvalidToken, "Invalid or expired token", nil)
				return
			}
			observability.RecordTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.SessionClaims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.SessionClaims)
	return c, ok
}
