package integration

import (
	"net/http"
	"testing"
	"time"

	"mobile-auth-service/internal/security"
)

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	baseURL, client, _, closeFn := newAuthTestServer(t)
	defer closeFn()

	cases := []struct {
		name     string
		headers  map[string]string
		wantCode string
	}{
		{"missing header", nil, "MISSING_AUTH_HEADER"},
		{"basic scheme", map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}, "MISSING_AUTH_HEADER"},
		{"garbage token", bearer("not-a-jwt"), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, tc.headers)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != tc.wantCode {
				t.Fatalf("expected %s, got %#v", tc.wantCode, env.Error)
			}
		})
	}
}

func TestForgedAndExpiredTokensCollapse(t *testing.T) {
	baseURL, client, _, closeFn := newAuthTestServer(t)
	defer closeFn()

	forged, err := security.NewJWTManager("mobile-auth-service", "zzzzzzzzzzzzzzzzzzzzzzzzzz123456").
		SignSessionToken("0771230040", true, time.Hour)
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}
	expired, err := security.NewJWTManager("mobile-auth-service", "abcdefghijklmnopqrstuvwxyz123456").
		SignSessionToken("0771230040", true, -time.Minute)
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	for name, token := range map[string]string{"forged": forged, "expired": expired} {
		t.Run(name, func(t *testing.T) {
			resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, bearer(token))
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != "INVALID_TOKEN" {
				t.Fatalf("expected INVALID_TOKEN, got %#v", env.Error)
			}
		})
	}
}

func TestVerifyCodeRouteIsProtected(t *testing.T) {
	baseURL, client, _, closeFn := newAuthTestServer(t)
	defer closeFn()

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/verify-code", map[string]string{
		"mobile": "0771230041",
		"code":   "123456",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("verify-code without a token should be 401, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "MISSING_AUTH_HEADER" {
		t.Fatalf("expected MISSING_AUTH_HEADER, got %#v", env.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	baseURL, client, _, closeFn := newAuthTestServer(t)
	defer closeFn()

	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		t.Fatalf("liveness: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("liveness should be 200, got %d", resp.StatusCode)
	}

	resp, err = client.Get(baseURL + "/health/ready")
	if err != nil {
		t.Fatalf("readiness: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readiness with a live database should be 200, got %d", resp.StatusCode)
	}
}
