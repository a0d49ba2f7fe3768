package service

import (
	"time"

	"mobile-auth-service/internal/security"
)

// TokenService mints bearer tokens with a verification-state-dependent
// lifetime: an unverified session only lives long enough to complete the
// verification step.
type TokenService struct {
	jwtMgr        *security.JWTManager
	verifiedTTL   time.Duration
	unverifiedTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, verifiedTTL, unverifiedTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, verifiedTTL: verifiedTTL, unverifiedTTL: unverifiedTTL}
}

func (s *TokenService) Issue(mobile string, verified bool) (string, time.Time, error) {
	ttl := s.unverifiedTTL
	if verified {
		ttl = s.verifiedTTL
	}
	token, err := s.jwtMgr.SignSessionToken(mobile, verified, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().Add(ttl), nil
}
