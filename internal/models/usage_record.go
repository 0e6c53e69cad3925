package models

import "time"

// UsageRecord counts blog generations for one user on one calendar day.
type UsageRecord struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex:idx_usage_user_day"`           // Counted user.
	Day    string `gorm:"type:text;not null;uniqueIndex:idx_usage_user_day"` // Calendar day, YYYY-MM-DD.

	Count     int       `gorm:"not null;default:0"` // Generations performed on Day.
	LastReset time.Time `gorm:"not null"`           // Timestamp of the last counter update.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
