package database

import (
	"fmt"

	"github.com/Bruvz322/vectorIO-Lua-IDE/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Menu{},
		&models.MenuUser{},
		&models.DebugLog{},
		&models.DeletionRequest{},
		&models.Ticket{},
		&models.TicketMessage{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
