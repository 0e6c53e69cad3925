package models

import "time"

// Prompt represents a user-authored master prompt that steers blog generation.
type Prompt struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title    string `gorm:"type:text;not null"`                 // Display title.
	Content  string `gorm:"type:text;not null"`                 // Instruction template fed to the model.
	Category string `gorm:"type:text;not null;default:General"` // Category label.

	AuthorID   uint64 `gorm:"not null;index"`     // Owning user ID.
	AuthorName string `gorm:"type:text;not null"` // Denormalized author username.

	IsPublic bool `gorm:"not null;default:false"` // Visibility flag; prompts stay private.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
