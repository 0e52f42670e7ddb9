package models

import "time"

// Volunteer application statuses.
const (
	VolunteerStatusPending  = "pending"
	VolunteerStatusApproved = "approved"
	VolunteerStatusRejected = "rejected"
)

// Volunteer represents a volunteer application.
type Volunteer struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name       string `gorm:"type:text;not null"`
	Email      string `gorm:"type:text;not null"`
	Phone      string `gorm:"type:text"`
	Motivation string `gorm:"type:text"`

	Status string `gorm:"type:text;not null;default:'pending';index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
