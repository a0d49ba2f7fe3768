package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"mobile-auth-service/internal/http/middleware"
	"mobile-auth-service/internal/security"
)

func TestUserHandlerMeReturnsClaims(t *testing.T) {
	h := NewUserHandler()
	claims := &security.SessionClaims{
		Mobile:           "0771234567",
		IsVerified:       true,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "0771234567"},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsContextKey, claims))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body struct {
		Success    bool   `json:"success"`
		Mobile     string `json:"mobile"`
		IsVerified bool   `json:"is_verified"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Mobile != "0771234567" || !body.IsVerified {
		t.Fatalf("unexpected me response: %+v", body)
	}
}

func TestUserHandlerMeWithoutClaims(t *testing.T) {
	h := NewUserHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if env := decodeAuthError(t, rr); env.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN, got %s", env.Error.Code)
	}
}
