package database

import (
	"errors"
	"fmt"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/security"

	"gorm.io/gorm"
)

// SeedDevUser inserts a known development account. Idempotent; production
// deployments simply never call it.
func SeedDevUser(db *gorm.DB, mobile, password string, bcryptCost int) error {
	var existing domain.User
	err := db.Where("mobile = ?", mobile).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup seed user: %w", err)
	}

	hash, err := security.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	if err := db.Create(&domain.User{Mobile: mobile, PasswordHash: hash}).Error; err != nil {
		return fmt.Errorf("create seed user: %w", err)
	}
	return nil
}
