package models

import "time"

// Event represents a program event shown on the public site.
type Event struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Title       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"type:text"`

	StartsAt time.Time  `gorm:"not null;index"`
	EndsAt   *time.Time

	Published bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
