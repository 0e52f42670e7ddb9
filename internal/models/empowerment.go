package models

import "time"

// Empowerment represents an empowerment program article.
type Empowerment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Title   string `gorm:"type:text;not null"`
	Summary string `gorm:"type:text"`
	Body    string `gorm:"type:text"`

	Published bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
