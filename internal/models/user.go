package models

import "time"

// User represents a blog platform account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	EmailVerified bool `gorm:"not null;default:false"` // Whether the email was confirmed.

	Prompts []Prompt `gorm:"foreignKey:AuthorID"` // Owned master prompts.
	Posts   []Post   `gorm:"foreignKey:AuthorID"` // Owned posts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
