package db

import (
	"fmt"

	"github.com/youthlift/backoffice/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.Admin{},
		&models.AuditLog{},
		&models.Event{},
		&models.Volunteer{},
		&models.TeamMember{},
		&models.Tag{},
		&models.Empowerment{},
		&models.ContactSubmission{},
		&models.Setting{},
	)
}
