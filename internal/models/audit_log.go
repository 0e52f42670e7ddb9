package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an immutable record of a privileged action. Rows are written
// once by the audit recorder and never updated; a retention cleaner removes
// rows past the retention window.
type AuditLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Action     string `gorm:"type:text;not null;index"` // Action kind (login, create, ...).
	Resource   string `gorm:"type:text;not null;index"` // Resource category (admin, event, ...).
	ResourceID string `gorm:"type:text"`                // Optional affected resource ID.

	ActorID    uint64 `gorm:"not null;default:0;index"` // Acting admin ID, 0 for system/anonymous.
	ActorEmail string `gorm:"type:text;not null"`       // Acting admin email, or system/anonymous.

	IP        string `gorm:"type:text"` // Client IP.
	UserAgent string `gorm:"type:text"` // Client user agent.
	Path      string `gorm:"type:text"` // Request path.

	Before datatypes.JSON `gorm:"type:jsonb"` // Sanitized pre-change snapshot.
	After  datatypes.JSON `gorm:"type:jsonb"` // Sanitized post-change snapshot.

	Status       string `gorm:"type:text;not null"`       // success or failure.
	ErrorMessage string `gorm:"type:text"`                // Failure detail, if any.
	Severity     string `gorm:"type:text;not null;index"` // info, warning or error.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Event timestamp.
}
