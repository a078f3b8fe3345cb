package models

import (
	"time"
)

type BedType string

const (
	BedTypeSingle BedType = "single"
	BedTypeDouble BedType = "double"
	BedTypeQueen  BedType = "queen"
	BedTypeKing   BedType = "king"
)

type BedSubType string

const (
	BedSubTypeStandard BedSubType = "standard"
	BedSubTypeSofa     BedSubType = "sofa"
	BedSubTypeBunk     BedSubType = "bunk"
	BedSubTypeRollaway BedSubType = "rollaway"
)

// ValidBedType reports whether s names a known bed type.
func ValidBedType(s string) bool {
	switch BedType(s) {
	case BedTypeSingle, BedTypeDouble, BedTypeQueen, BedTypeKing:
		return true
	}
	return false
}

// ValidBedSubType reports whether s names a known bed subtype.
func ValidBedSubType(s string) bool {
	switch BedSubType(s) {
	case BedSubTypeStandard, BedSubTypeSofa, BedSubTypeBunk, BedSubTypeRollaway:
		return true
	}
	return false
}

type Bed struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	RoomID     uint       `gorm:"index;column:room_id" json:"room_id"`
	BedType    BedType    `gorm:"column:bed_type;type:varchar(20)" json:"bed_type"`
	BedSubType BedSubType `gorm:"column:bed_subtype;type:varchar(20)" json:"bed_subtype"`
}

// Capacity is the number of guests the bed sleeps: one for a single,
// two for anything larger.
func (b Bed) Capacity() int {
	if b.BedType == BedTypeSingle {
		return 1
	}
	return 2
}
