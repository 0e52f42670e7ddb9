package models

import "time"

// TeamMember represents a member of the public team roster.
type TeamMember struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name     string `gorm:"type:text;not null"`
	Title    string `gorm:"type:text"`
	Bio      string `gorm:"type:text"`
	PhotoURL string `gorm:"type:text"`

	SortOrder int  `gorm:"not null;default:0"`
	Active    bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
