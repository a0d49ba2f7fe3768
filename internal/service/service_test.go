package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"mobile-auth-service/internal/config"
	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/repository"
	"mobile-auth-service/internal/security"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type captureNotifier struct {
	mu   sync.Mutex
	last CodeNotification
	sent int
}

func (n *captureNotifier) SendCode(_ context.Context, notification CodeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = notification
	n.sent++
	return nil
}

func (n *captureNotifier) LastCode() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last.Code
}

type authFixture struct {
	db       *gorm.DB
	cfg      *config.Config
	userRepo repository.UserRepository
	codeRepo repository.VerificationCodeRepository
	codeSvc  *CodeService
	tokenSvc *TokenService
	auth     *AuthService
	notifier *captureNotifier
	jwtMgr   *security.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.VerificationCode{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:        strings.Repeat("s", 32),
		JWTIssuer:        "mobile-auth-service",
		JWTVerifiedTTL:   time.Hour,
		JWTUnverifiedTTL: 5 * time.Minute,
		BcryptCost:       bcrypt.MinCost,
		VerifyCodeTTL:    2 * time.Minute,
	}
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewVerificationCodeRepository(db)
	codeSvc := NewCodeService(userRepo, codeRepo, cfg.VerifyCodeTTL)
	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret)
	tokenSvc := NewTokenService(jwtMgr, cfg.JWTVerifiedTTL, cfg.JWTUnverifiedTTL)
	notifier := &captureNotifier{}
	auth := NewAuthService(cfg, userRepo, codeSvc, tokenSvc, notifier)

	return &authFixture{
		db:       db,
		cfg:      cfg,
		userRepo: userRepo,
		codeRepo: codeRepo,
		codeSvc:  codeSvc,
		tokenSvc: tokenSvc,
		auth:     auth,
		notifier: notifier,
		jwtMgr:   jwtMgr,
	}
}

func (fx *authFixture) register(t *testing.T, mobile, password string) *LoginResult {
	t.Helper()
	res, err := fx.auth.Register(mobile, password)
	if err != nil {
		t.Fatalf("register %s: %v", mobile, err)
	}
	return res
}

func (fx *authFixture) mustFindUser(t *testing.T, mobile string) *domain.User {
	t.Helper()
	u, err := fx.userRepo.FindByMobile(mobile)
	if err != nil {
		t.Fatalf("find user %s: %v", mobile, err)
	}
	return u
}

func devNotifierForTest() SMSCodeNotifier {
	return NewDevSMSNotifier(slog.Default())
}
