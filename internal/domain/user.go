package domain

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Mobile       string    `gorm:"uniqueIndex;size:15;not null" json:"mobile"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
