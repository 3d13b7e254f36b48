package models

import "time"

// User is a local account, created either by hand or on first OAuth login
type User struct {
	ID           uint64 `gorm:"primaryKey"`
	Username     string `gorm:"size:150;uniqueIndex"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	PasswordHash string `gorm:"size:128"`

	CreatedAt time.Time
}

// AuthToken is the single API token issued per user
type AuthToken struct {
	Key    string `gorm:"primaryKey;size:40"`
	UserID uint64 `gorm:"uniqueIndex"`
	User   User   `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}

// SocialIdentity maps a third-party OAuth identity to a local user
type SocialIdentity struct {
	ID           uint64 `gorm:"primaryKey"`
	SocialType   string `gorm:"size:256;index:idx_social_lookup"`
	SocialUserID string `gorm:"size:256;index:idx_social_lookup"`

	UserID uint64
	User   User `gorm:"constraint:OnDelete:CASCADE"`
}
