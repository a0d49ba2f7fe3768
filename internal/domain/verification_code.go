package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodePurpose scopes a verification code to the flow that requested it.
// Codes issued for one purpose never validate against another.
type CodePurpose string

const (
	PurposeMobileVerification CodePurpose = "mobile_verification"
	PurposePasswordReset      CodePurpose = "password_reset"
)

func ParseCodePurpose(v string) (CodePurpose, error) {
	switch CodePurpose(v) {
	case PurposeMobileVerification:
		return PurposeMobileVerification, nil
	case PurposePasswordReset:
		return PurposePasswordReset, nil
	default:
		return "", fmt.Errorf("unknown code purpose %q", v)
	}
}

func (p CodePurpose) Valid() bool {
	return p == PurposeMobileVerification || p == PurposePasswordReset
}

// VerificationCode is a one-time 6-digit code. Consumed rows are kept for
// audit history; issuing marks prior outstanding rows consumed instead of
// deleting them.
type VerificationCode struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint        `gorm:"not null;index:idx_verification_codes_user_purpose" json:"user_id"`
	Code      string      `gorm:"size:6;not null" json:"-"`
	Purpose   CodePurpose `gorm:"size:32;not null;index:idx_verification_codes_user_purpose" json:"purpose"`
	ExpiresAt time.Time   `gorm:"not null" json:"expires_at"`
	Consumed  bool        `gorm:"not null;default:false" json:"consumed"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (c *VerificationCode) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
