package models

import "time"

// VerificationToken represents a pending email verification.
type VerificationToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Token  string `gorm:"type:text;not null;uniqueIndex"` // Opaque token value.
	UserID uint64 `gorm:"not null;index"`                 // User awaiting verification.
	Email  string `gorm:"type:text;not null"`             // Email the token was sent to.

	ExpiresAt time.Time `gorm:"not null"`                // Expiry timestamp.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
