package models

import (
	"time"
)

// Family groups guests; the primary contact must itself be a member.
type Family struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name             string `gorm:"index;type:varchar(255)" json:"name"`
	PrimaryContactID *uint  `gorm:"column:primary_contact_id" json:"primary_contact_id,omitempty"`

	Guests []Guest `gorm:"foreignKey:FamilyID" json:"guests,omitempty"`
}
