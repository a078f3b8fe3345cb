package models

import (
	"time"
)

type ReservationStatus string

const (
	// ReservationPending is declared for callers that stage reservations
	// before confirming them; the normal creation path never persists it.
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation holds a room for a guest over the half-open date range
// [StartDate, EndDate): a stay from day D to day D+1 occupies exactly
// night D, so a checkout and a new check-in may share a calendar date.
//
// Reservations are never deleted by the lifecycle operations; cancellation
// flips Status and leaves the row for history.
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`

	GuestID uint `gorm:"index;column:guest_id" json:"guest_id"`
	RoomID  uint `gorm:"index;column:room_id" json:"room_id"`

	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`

	// NumGuests is optional metadata; zero means "not recorded" and is not
	// validated against room capacity.
	NumGuests       int    `gorm:"column:num_guests" json:"num_guests,omitempty"`
	SpecialRequests string `gorm:"column:special_requests;type:text" json:"special_requests,omitempty"`

	Status ReservationStatus `gorm:"column:status;size:20;index" json:"status"`

	Guest Guest `gorm:"foreignKey:GuestID" json:"-"`
	Room  Room  `gorm:"foreignKey:RoomID" json:"-"`
}

// Nights is the number of nights the reservation occupies.
func (r *Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

// Overlaps reports whether the reservation's interval intersects the
// half-open range [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && start.Before(r.EndDate)
}
