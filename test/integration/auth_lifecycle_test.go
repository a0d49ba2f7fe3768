package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mobile-auth-service/internal/config"
	"mobile-auth-service/internal/database"
	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/health"
	"mobile-auth-service/internal/http/handler"
	"mobile-auth-service/internal/http/router"
	"mobile-auth-service/internal/repository"
	"mobile-auth-service/internal/security"
	"mobile-auth-service/internal/service"
)

type apiEnvelope struct {
	Success    bool   `json:"success"`
	Mobile     string `json:"mobile"`
	IsVerified bool   `json:"is_verified"`
	Token      string `json:"token"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// codeCaptureNotifier records issued codes instead of sending SMS so tests
// can complete verification and reset flows end to end.
type codeCaptureNotifier struct {
	mu    sync.Mutex
	codes []service.CodeNotification
}

func (n *codeCaptureNotifier) SendCode(_ context.Context, notification service.CodeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = append(n.codes, notification)
	return nil
}

func (n *codeCaptureNotifier) Last(t *testing.T) service.CodeNotification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.codes) == 0 {
		t.Fatal("no verification code was issued")
	}
	return n.codes[len(n.codes)-1]
}

func (n *codeCaptureNotifier) All() []service.CodeNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]service.CodeNotification, len(n.codes))
	copy(out, n.codes)
	return out
}

type authTestServerOptions struct {
	codeTTL         time.Duration
	authLimitMax    int
	authLimitWindow time.Duration
}

func newAuthTestServer(t *testing.T) (string, *http.Client, *codeCaptureNotifier, func()) {
	return newAuthTestServerWithOptions(t, authTestServerOptions{})
}

func newAuthTestServerWithOptions(t *testing.T, opts authTestServerOptions) (string, *http.Client, *codeCaptureNotifier, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	codeTTL := opts.codeTTL
	if codeTTL == 0 {
		codeTTL = 2 * time.Minute
	}
	authLimitMax := opts.authLimitMax
	if authLimitMax == 0 {
		authLimitMax = 1000
	}
	authLimitWindow := opts.authLimitWindow
	if authLimitWindow == 0 {
		authLimitWindow = time.Minute
	}

	cfg := &config.Config{
		Env:        "test",
		BcryptCost: 4,
	}

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	jwtMgr := security.NewJWTManager("mobile-auth-service", "abcdefghijklmnopqrstuvwxyz123456")
	codeSvc := service.NewCodeService(userRepo, codeRepo, codeTTL)
	tokenSvc := service.NewTokenService(jwtMgr, time.Hour, 5*time.Minute)
	notifier := &codeCaptureNotifier{}
	authSvc := service.NewAuthService(cfg, userRepo, codeSvc, tokenSvc, notifier)

	r := router.NewRouter(router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authSvc),
		UserHandler:         handler.NewUserHandler(),
		NotificationHandler: handler.NewNotificationHandler(),
		JWTManager:          jwtMgr,
		CORSOrigins:         []string{"http://localhost"},
		APIRateLimitRPM:     1000,
		AuthRateLimitMax:    authLimitMax,
		AuthRateLimitWindow: authLimitWindow,
		Readiness:           health.NewProbeRunner(time.Second, 0, health.NewDBChecker(db)),
		EnableOTelHTTP:      false,
	})

	srv := httptest.NewServer(r)
	return srv.URL, srv.Client(), notifier, srv.Close
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, apiEnvelope) {
	t.Helper()
	var payload []byte
	var err error
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env apiEnvelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func registerUser(t *testing.T, client *http.Client, baseURL, mobile, password string) apiEnvelope {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/register", map[string]string{
		"mobile":   mobile,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("register failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	return env
}

func TestRegisterVerifyLifecycle(t *testing.T) {
	baseURL, client, notifier, closeFn := newAuthTestServer(t)
	defer closeFn()

	const mobile = "0771230001"
	env := registerUser(t, client, baseURL, mobile, "Password123")
	if env.IsVerified {
		t.Fatal("freshly registered user must not be verified")
	}
	if env.Token == "" {
		t.Fatal("register should issue a session token")
	}
	unverifiedToken := env.Token

	resp, meEnv := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, bearer(unverifiedToken))
	if resp.StatusCode != http.StatusOK || meEnv.Mobile != mobile || meEnv.IsVerified {
		t.Fatalf("me before verification: status=%d mobile=%q verified=%v", resp.StatusCode, meEnv.Mobile, meEnv.IsVerified)
	}

	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/send-code", map[string]string{
		"mobile": mobile,
	}, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("send-code failed: status=%d", resp.StatusCode)
	}
	issued := notifier.Last(t)
	if issued.Purpose != domain.PurposeMobileVerification {
		t.Fatalf("expected mobile_verification purpose, got %q", issued.Purpose)
	}
	if len(issued.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", issued.Code)
	}

	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/verify-code", map[string]string{
		"mobile": mobile,
		"code":   issued.Code,
	}, bearer(unverifiedToken))
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("verify-code failed: status=%d error=%#v", resp.StatusCode, env.Error)
	}
	if env.Token == "" || env.Token == unverifiedToken {
		t.Fatal("verification should issue a fresh token")
	}

	resp, meEnv = doJSON(t, client, http.MethodGet, baseURL+"/api/v1/me", nil, bearer(env.Token))
	if resp.StatusCode != http.StatusOK || !meEnv.IsVerified {
		t.Fatalf("me after verification: status=%d verified=%v", resp.StatusCode, meEnv.IsVerified)
	}

	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/verify-code", map[string]string{
		"mobile": mobile,
		"code":   issued.Code,
	}, bearer(env.Token))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected consumed code to be rejected, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "INCORRECT_VERIFY_CODE" {
		t.Fatalf("expected INCORRECT_VERIFY_CODE, got %#v", env.Error)
	}
}

func TestLoginTokenReflectsVerificationState(t *testing.T) {
	baseURL, client, notifier, closeFn := newAuthTestServer(t)
	defer closeFn()

	const mobile = "0771230002"
	const password = "Password123"
	registerUser(t, client, baseURL, mobile, password)

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/login", map[string]string{
		"mobile":   mobile,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK || env.IsVerified {
		t.Fatalf("login before verification: status=%d verified=%v", resp.StatusCode, env.IsVerified)
	}
	unverifiedToken := env.Token

	doJSON(t, client, http.MethodPost, baseURL+"/api/v1/send-code", map[string]string{"mobile": mobile}, nil)
	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/verify-code", map[string]string{
		"mobile": mobile,
		"code":   notifier.Last(t).Code,
	}, bearer(unverifiedToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-code failed: status=%d", resp.StatusCode)
	}

	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/login", map[string]string{
		"mobile":   mobile,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK || !env.IsVerified {
		t.Fatalf("login after verification: status=%d verified=%v", resp.StatusCode, env.IsVerified)
	}

	claims, err := security.NewJWTManager("mobile-auth-service", "abcdefghijklmnopqrstuvwxyz123456").ParseSessionToken(env.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.IsVerified {
		t.Fatal("claims should carry the verified flag")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 55*time.Minute || ttl > time.Hour {
		t.Fatalf("verified token TTL should be about an hour, got %s", ttl)
	}

	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/v1/login", map[string]string{
		"mobile":   mobile,
		"password": "WrongPass1",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "INCORRECT_MOBILE_PWD" {
		t.Fatalf("expected INCORRECT_MOBILE_PWD, got %#v", env.Error)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	baseURL, client, _, closeFn := newAuthTestServer(t)
	defer closeFn()

	cases := []struct {
		name     string
		mobile   string
		password string
		wantCode string
	}{
		{"bad mobile format", "12345", "Password123", "INVALID_MOBILE"},
		{"weak password", "0771230003", "short", "INVALID_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/register", map[string]string{
				"mobile":   tc.mobile,
				"password": tc.password,
			}, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if env.Error == nil || env.Error.Code != tc.wantCode {
				t.Fatalf("expected %s, got %#v", tc.wantCode, env.Error)
			}
		})
	}

	registerUser(t, client, baseURL, "0771230004", "Password123")
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/register", map[string]string{
		"mobile":   "0771230004",
		"password": "Password123",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate mobile, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "MOBILE_ALREADY_REGISTERED" {
		t.Fatalf("expected MOBILE_ALREADY_REGISTERED, got %#v", env.Error)
	}
}
