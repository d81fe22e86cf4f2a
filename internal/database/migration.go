package database

import (
	"fmt"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Pie{},
		&models.Slice{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
