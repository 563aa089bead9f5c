package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/models"
)

// AutoMigrate creates or updates the schema for the contact_messages and
// cache_entries tables.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(
		&models.ContactMessage{},
		&models.CacheEntry{},
	)
}
