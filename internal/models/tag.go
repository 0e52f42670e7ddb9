package models

import "time"

// Tag labels events and empowerment programs for site navigation.
type Tag struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name string `gorm:"type:text;not null;uniqueIndex"`
	Slug string `gorm:"type:text;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
