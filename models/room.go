package models

import (
	"time"

	"gorm.io/datatypes"
)

// Room belongs to exactly one building. RoomNumber is unique within the
// building, not globally. Capacity is derived from the assigned beds and is
// never stored.
type Room struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name       string         `gorm:"type:varchar(255)" json:"name"`
	RoomNumber string         `gorm:"column:room_number;type:varchar(50);uniqueIndex:idx_building_room_number" json:"room_number"`
	BuildingID uint           `gorm:"column:building_id;uniqueIndex:idx_building_room_number" json:"building_id"`
	Amenities  datatypes.JSON `gorm:"column:amenities" json:"amenities,omitempty"`

	Building Building `gorm:"foreignKey:BuildingID" json:"-"`
	Beds     []Bed    `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"beds,omitempty"`
}

// Capacity sums the contribution of every bed in the room. Beds must be
// loaded for the result to be meaningful.
func (r *Room) Capacity() int {
	total := 0
	for _, bed := range r.Beds {
		total += bed.Capacity()
	}
	return total
}
