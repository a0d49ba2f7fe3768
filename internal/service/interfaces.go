package service

import (
	"context"

	"mobile-auth-service/internal/domain"
)

type AuthServiceInterface interface {
	Register(mobile, password string) (*LoginResult, error)
	Login(mobile, password string) (*LoginResult, error)
	SendCode(ctx context.Context, mobile string, purpose domain.CodePurpose) error
	VerifyMobile(mobile, code string) (*LoginResult, error)
	ResetPassword(mobile, code, newPassword string) error
}
