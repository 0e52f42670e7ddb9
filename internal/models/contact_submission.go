package models

import "time"

// Contact submission statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusArchived = "archived"
)

// ContactSubmission represents a message sent through the public contact form.
type ContactSubmission struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name    string `gorm:"type:text;not null"`
	Email   string `gorm:"type:text;not null"`
	Subject string `gorm:"type:text"`
	Message string `gorm:"type:text;not null"`

	Status string `gorm:"type:text;not null;default:'new';index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
