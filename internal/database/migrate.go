package database

import (
	"fmt"

	"github.com/besttime/besttime-api/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema. Besides AutoMigrate it installs the partial
// unique index that guarantees at most one open time entry per user; the
// check-then-insert in the repository is serialized with a row lock, and this
// index is the store-level backstop for that invariant.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.TimeEntry{},
		&models.ActivityLog{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS index_time_entries_one_active_per_user
		 ON time_entries (user_id) WHERE end_time IS NULL`,
	).Error; err != nil {
		return fmt.Errorf("create active-entry index: %w", err)
	}

	return nil
}
