package handler

import (
	"net/http"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/http/middleware"
	"mobile-auth-service/internal/http/response"
	"mobile-auth-service/internal/observability"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me answers from the bearer token's claims alone. The verified flag reflects
// issuance time, not current store state; clients refresh it by re-verifying
// or logging in again.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, domain.ErrCodeInvalidToken, "Invalid or expired token", nil)
		return
	}
	observability.Audit(r, "user.me", "mobile", observability.MaskMobile(claims.Mobile))
	response.JSON(w, r, http.StatusOK, map[string]any{
		"success":     true,
		"mobile":      claims.Mobile,
		"is_verified": claims.IsVerified,
	})
}
