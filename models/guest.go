package models

import (
	"time"

	"gorm.io/datatypes"
)

// Guest must carry at least one contact method (email or phone); the guest
// service enforces this before writes.
type Guest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name  string `gorm:"index;type:varchar(255)" json:"name"`
	Email string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone string `gorm:"type:varchar(50)" json:"phone,omitempty"`

	Preferences   datatypes.JSONMap `gorm:"column:preferences" json:"preferences"`
	ContactEmails datatypes.JSON    `gorm:"column:contact_emails" json:"contact_emails"`

	FamilyID *uint `gorm:"index;column:family_id" json:"family_id,omitempty"`

	Family       Family        `gorm:"foreignKey:FamilyID" json:"-"`
	Reservations []Reservation `gorm:"foreignKey:GuestID" json:"-"`
}
