package models

import (
	"time"
)

type Property struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name    string `gorm:"index;type:varchar(255)" json:"name"`
	Address string `gorm:"type:varchar(255)" json:"address"`

	Buildings []Building `gorm:"foreignKey:PropertyID" json:"buildings,omitempty"`
}
