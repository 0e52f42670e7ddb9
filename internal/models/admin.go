package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin represents an administrator account stored in the database.
// Accounts are deactivated rather than deleted; Role may be empty on rows
// provisioned before roles existed and is migrated at the next successful
// login.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique lowercased email.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Role        string         `gorm:"type:text;not null;default:''"`    // One of the permission roles.
	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Permission keys in JSON.

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	ResetToken          string     `gorm:"type:text;index"` // Outstanding password reset token.
	ResetTokenExpiresAt *time.Time // Reset token expiry.

	LastLoginAt          *time.Time // Last successful login.
	LastPasswordChangeAt *time.Time // Last password change or reset.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
