package repository

import (
	"errors"
	"time"

	"mobile-auth-service/internal/domain"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id uint) (*domain.User, error)
	FindByMobile(mobile string) (*domain.User, error)
	MarkVerified(userID uint) error
	UpdatePassword(userID uint, newHash string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(user *domain.User) error { return r.db.Create(user).Error }

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByMobile(mobile string) (*domain.User, error) {
	var u domain.User
	if err := r.db.Where("mobile = ?", mobile).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// MarkVerified is one-way: is_verified never flips back to false.
func (r *GormUserRepository) MarkVerified(userID uint) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"is_verified": true, "updated_at": time.Now().UTC()}).Error
}

func (r *GormUserRepository) UpdatePassword(userID uint, newHash string) error {
	return r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"password_hash": newHash, "updated_at": time.Now().UTC()}).Error
}
