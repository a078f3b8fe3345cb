package models

import (
	"time"
)

type Building struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name       string `gorm:"index;type:varchar(255)" json:"name"`
	PropertyID uint   `gorm:"index;column:property_id" json:"property_id"`

	Property Property `gorm:"foreignKey:PropertyID" json:"-"`
	Rooms    []Room   `gorm:"foreignKey:BuildingID" json:"rooms,omitempty"`
}
