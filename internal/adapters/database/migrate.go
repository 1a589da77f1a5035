package database

import (
	"fmt"

	"launcher-hub/internal/models"

	"gorm.io/gorm"
)

// Migrate runs schema migrations for the tables the hub reads.
func Migrate(db *gorm.DB) error {
	toMigrate := []interface{}{
		&models.User{},
		&models.ChatRoom{},
	}

	for _, model := range toMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model: %w", err)
		}
	}
	return nil
}
