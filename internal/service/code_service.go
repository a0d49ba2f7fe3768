package service

import (
	"errors"
	"fmt"
	"time"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/repository"
	"mobile-auth-service/internal/security"
)

// CodeService owns the verification-code lifecycle: issuing a fresh code
// (soft-invalidating any outstanding one for the same user and purpose) and
// consuming a presented code with its purpose-specific side effect.
//
// Why a verify miss never says wrong-vs-expired-vs-consumed: the caller is
// the person typing the code, and a distinction there is an oracle.
type CodeService struct {
	userRepo repository.UserRepository
	codeRepo repository.VerificationCodeRepository
	codeTTL  time.Duration
	now      func() time.Time
}

func NewCodeService(userRepo repository.UserRepository, codeRepo repository.VerificationCodeRepository, codeTTL time.Duration) *CodeService {
	return &CodeService{
		userRepo: userRepo,
		codeRepo: codeRepo,
		codeTTL:  codeTTL,
		now:      time.Now,
	}
}

// Issue generates a fresh 6-digit code for (userID, purpose). The invalidate
// and insert run inside one store transaction, so the at-most-one-outstanding
// invariant holds even when two issuances race.
func (s *CodeService) Issue(userID uint, purpose domain.CodePurpose) (string, time.Time, error) {
	code, err := security.NewVerifyCode()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.codeTTL)
	row := &domain.VerificationCode{
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}
	if err := s.codeRepo.Replace(row); err != nil {
		return "", time.Time{}, fmt.Errorf("issue verification code: %w", err)
	}
	return code, expiresAt, nil
}

// Verify consumes a matching outstanding code and, for mobile verification,
// marks the user verified. A false return means the code did not match any
// outstanding row — wrong, expired, and already-consumed are deliberately
// indistinguishable.
func (s *CodeService) Verify(userID uint, code string, purpose domain.CodePurpose) (bool, error) {
	row, ok, err := s.consumeMatching(userID, code, purpose)
	if err != nil || !ok {
		return false, err
	}
	if purpose == domain.PurposeMobileVerification {
		if err := s.userRepo.MarkVerified(row.UserID); err != nil {
			return false, fmt.Errorf("mark user verified: %w", err)
		}
	}
	return true, nil
}

// ConsumeForPasswordChange is the password-reset variant: on a match it swaps
// the user's password hash for the supplied one.
func (s *CodeService) ConsumeForPasswordChange(userID uint, code, newPasswordHash string) (bool, error) {
	row, ok, err := s.consumeMatching(userID, code, domain.PurposePasswordReset)
	if err != nil || !ok {
		return false, err
	}
	if err := s.userRepo.UpdatePassword(row.UserID, newPasswordHash); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}
	return true, nil
}

func (s *CodeService) consumeMatching(userID uint, code string, purpose domain.CodePurpose) (*domain.VerificationCode, bool, error) {
	row, err := s.codeRepo.FindOutstanding(userID, code, purpose, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup verification code: %w", err)
	}
	// Consume keyed by row id, not by (user, purpose): a concurrent issuance
	// must never be cancelled by consuming somebody else's still-valid row.
	if err := s.codeRepo.Consume(row.ID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("consume verification code: %w", err)
	}
	return row, true, nil
}
