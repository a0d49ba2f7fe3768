package repository

import (
	"errors"
	"time"

	"mobile-auth-service/internal/domain"

	"gorm.io/gorm"
)

var ErrCodeNotFound = errors.New("verification code not found")

type VerificationCodeRepository interface {
	// Replace soft-invalidates every outstanding code for (userID, purpose)
	// and inserts the new row, atomically. After it returns there is at most
	// one outstanding code for the pair.
	Replace(code *domain.VerificationCode) error
	InvalidateOutstanding(userID uint, purpose domain.CodePurpose) error
	Create(code *domain.VerificationCode) error
	// FindOutstanding applies the full match predicate: exact code string,
	// matching purpose, unconsumed, not yet expired at now.
	FindOutstanding(userID uint, code string, purpose domain.CodePurpose, now time.Time) (*domain.VerificationCode, error)
	// Consume flips the consumed flag on one specific row. Returns
	// ErrCodeNotFound when the row was already consumed, so a code can never
	// be redeemed twice.
	Consume(codeID string) error
	CountOutstanding(userID uint, purpose domain.CodePurpose) (int64, error)
}

type GormVerificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

func (r *GormVerificationCodeRepository) Replace(code *domain.VerificationCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := invalidateOutstanding(tx, code.UserID, code.Purpose); err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *GormVerificationCodeRepository) InvalidateOutstanding(userID uint, purpose domain.CodePurpose) error {
	return invalidateOutstanding(r.db, userID, purpose)
}

func invalidateOutstanding(db *gorm.DB, userID uint, purpose domain.CodePurpose) error {
	return db.Model(&domain.VerificationCode{}).
		Where("user_id = ? AND purpose = ? AND consumed = ?", userID, purpose, false).
		Updates(map[string]any{"consumed": true, "updated_at": time.Now().UTC()}).Error
}

func (r *GormVerificationCodeRepository) Create(code *domain.VerificationCode) error {
	return r.db.Create(code).Error
}

func (r *GormVerificationCodeRepository) FindOutstanding(userID uint, code string, purpose domain.CodePurpose, now time.Time) (*domain.VerificationCode, error) {
	var row domain.VerificationCode
	err := r.db.
		Where("user_id = ? AND code = ? AND purpose = ? AND consumed = ? AND expires_at > ?",
			userID, code, purpose, false, now).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *GormVerificationCodeRepository) Consume(codeID string) error {
	res := r.db.Model(&domain.VerificationCode{}).
		Where("id = ? AND consumed = ?", codeID, false).
		Updates(map[string]any{"consumed": true, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *GormVerificationCodeRepository) CountOutstanding(userID uint, purpose domain.CodePurpose) (int64, error) {
	var n int64
	err := r.db.Model(&domain.VerificationCode{}).
		Where("user_id = ? AND purpose = ? AND consumed = ?", userID, purpose, false).
		Count(&n).Error
	return n, err
}
