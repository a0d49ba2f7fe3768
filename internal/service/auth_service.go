package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mobile-auth-service/internal/config"
	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/repository"
	"mobile-auth-service/internal/security"
)

var (
	ErrInvalidMobile      = errors.New("invalid mobile number format")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrMobileRegistered   = errors.New("mobile number already registered")
	ErrInvalidCredentials = errors.New("invalid mobile or password")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
)

// Sri Lankan numbering plan, local format only: a leading 0 followed by a
// mobile prefix (07x) or an area/operator code, 10 digits total.
var mobileRe = regexp.MustCompile(`^0(?:(?:11|21|23|24|25|26|27|31|32|33|34|35|36|37|38|41|45|47|51|52|54|55|57|63|65|66|67|81|91)[0234579]|7[0124-8]\d)\d{6}$`)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	codeSvc  *CodeService
	tokenSvc *TokenService
	notifier SMSCodeNotifier
}

// LoginResult carries what the HTTP layer needs to shape a response.
type LoginResult struct {
	Mobile     string
	IsVerified bool
	Token      string
	ExpiresAt  time.Time
}

func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	codeSvc *CodeService,
	tokenSvc *TokenService,
	notifier SMSCodeNotifier,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
		codeSvc:  codeSvc,
		tokenSvc: tokenSvc,
		notifier: notifier,
	}
}

// Register creates an unverified user and returns a short-lived session
// token so the client can immediately request a verification code.
func (s *AuthService) Register(mobile, password string) (*LoginResult, error) {
	mobile = strings.TrimSpace(mobile)
	password = strings.TrimSpace(password)
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByMobile(mobile); err == nil {
		return nil, ErrMobileRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Mobile: mobile, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, expiresAt, err := s.tokenSvc.Issue(user.Mobile, user.IsVerified)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Mobile: user.Mobile, IsVerified: user.IsVerified, Token: token, ExpiresAt: expiresAt}, nil
}

// Login collapses unknown-mobile and wrong-password into one error so the
// response cannot be used to enumerate accounts.
func (s *AuthService) Login(mobile, password string) (*LoginResult, error) {
	mobile = strings.TrimSpace(mobile)
	password = strings.TrimSpace(password)

	user, err := s.userRepo.FindByMobile(mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenSvc.Issue(user.Mobile, user.IsVerified)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Mobile: user.Mobile, IsVerified: user.IsVerified, Token: token, ExpiresAt: expiresAt}, nil
}

// SendCode issues a fresh code for the given purpose and hands it to the
// notifier. This endpoint is scoped to a known mobile the user just typed,
// so an unknown number reports ErrUserNotFound distinctly.
func (s *AuthService) SendCode(ctx context.Context, mobile string, purpose domain.CodePurpose) error {
	mobile = strings.TrimSpace(mobile)
	user, err := s.userRepo.FindByMobile(mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	code, expiresAt, err := s.codeSvc.Issue(user.ID, purpose)
	if err != nil {
		return err
	}
	return s.notifier.SendCode(ctx, CodeNotification{
		Mobile:    user.Mobile,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	})
}

// VerifyMobile consumes a mobile-verification code and, on success, returns
// a fresh long-lived token reflecting the now-true verified flag. The old
// short-lived token's is_verified=false claim is stale from here on.
func (s *AuthService) VerifyMobile(mobile, code string) (*LoginResult, error) {
	mobile = strings.TrimSpace(mobile)
	if !security.IsVerifyCodeSyntax(code) {
		return nil, ErrInvalidCode
	}
	user, err := s.userRepo.FindByMobile(mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ok, err := s.codeSvc.Verify(user.ID, code, domain.PurposeMobileVerification)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	token, expiresAt, err := s.tokenSvc.Issue(user.Mobile, true)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Mobile: user.Mobile, IsVerified: true, Token: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword validates the new password, then atomically consumes the
// reset code and swaps the hash. A failed code leaves the hash untouched.
func (s *AuthService) ResetPassword(mobile, code, newPassword string) error {
	mobile = strings.TrimSpace(mobile)
	newPassword = strings.TrimSpace(newPassword)
	if !security.IsVerifyCodeSyntax(code) {
		return ErrInvalidCode
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.userRepo.FindByMobile(mobile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := security.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	ok, err := s.codeSvc.ConsumeForPasswordChange(user.ID, code, hash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	return nil
}

func validateMobile(mobile string) error {
	if !strings.HasPrefix(mobile, "0") || !mobileRe.MatchString(mobile) {
		return ErrInvalidMobile
	}
	return nil
}

// Minimum 8 characters with at least one uppercase letter, one lowercase
// letter, and one digit. Symbols are allowed but not required.
func validatePassword(password string) error {
	if len(password) < 8 || !uppercaseRe.MatchString(password) ||
		!lowercaseRe.MatchString(password) || !digitRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
