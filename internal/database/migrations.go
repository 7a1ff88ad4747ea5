package database

import (
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
)

// AutoMigrate creates or updates the database schema for all models the
// notification core persists or consults.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Notification{},
		&models.CacheEntry{},
	)
}
