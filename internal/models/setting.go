package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores one site settings value as JSON, keyed by name.
type Setting struct {
	Key   string         `gorm:"type:text;primaryKey"`
	Value datatypes.JSON `gorm:"type:jsonb"`

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
