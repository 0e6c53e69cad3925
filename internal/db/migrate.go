package db

import (
	"fmt"

	"github.com/promptpress/promptpress/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for all entity collections.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Prompt{},
		&models.Post{},
		&models.VerificationToken{},
		&models.UsageRecord{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return nil
}
