package database

import (
	"fmt"

	"gorm.io/gorm"
)

// SchemaVersion is bumped whenever a registered schema changes shape.
const SchemaVersion int64 = 1

type DatabaseMigration struct {
	gorm.Model
	Version int64 `gorm:"not null;uniqueIndex"`
}

type DBMigrator struct {
	db *gorm.DB
}

func NewDBMigrator(db *gorm.DB) *DBMigrator {
	return &DBMigrator{
		db: db,
	}
}

// Migrate auto-migrates every registered schema and records SchemaVersion.
// It never drops data.
func (d *DBMigrator) Migrate() error {
	if err := d.db.AutoMigrate(&DatabaseMigration{}); err != nil {
		return fmt.Errorf("failed to create 'database_migration' table: %w", err)
	}
	for _, model := range SchemaRegistry {
		if err := d.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to auto migrate schema %T: %w", model, err)
		}
	}
	current, err := d.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to query migration records: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}
	if err := d.db.Create(&DatabaseMigration{Version: SchemaVersion}).Error; err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest recorded schema version, 0 when none.
func (d *DBMigrator) CurrentVersion() (int64, error) {
	var current DatabaseMigration
	result := d.db.Order("version DESC").Limit(1).Find(&current)
	if result.Error != nil {
		return 0, result.Error
	}
	return current.Version, nil
}
