package services

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Controllers translate these to HTTP
// statuses; everything else bubbles up as a store error.
var (
	ErrPropertyNotFound    = errors.New("property_not_found")
	ErrBuildingNotFound    = errors.New("building_not_found")
	ErrRoomNotFound        = errors.New("room_not_found")
	ErrBedNotFound         = errors.New("bed_not_found")
	ErrGuestNotFound       = errors.New("guest_not_found")
	ErrFamilyNotFound      = errors.New("family_not_found")
	ErrReservationNotFound = errors.New("reservation_not_found")

	// ErrInvalidRange covers start >= end and malformed date input.
	ErrInvalidRange = errors.New("invalid_date_range")

	// ErrValidation is the base for input validation failures; wrap it with
	// validationError so callers can match with errors.Is.
	ErrValidation = errors.New("validation")

	// ErrStoreUnavailable signals the backing database cannot be reached.
	ErrStoreUnavailable = errors.New("store_unavailable")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrBuildingNotFound) ||
		errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrBedNotFound) ||
		errors.Is(err, ErrGuestNotFound) ||
		errors.Is(err, ErrFamilyNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

// ConflictError is returned when a requested interval overlaps existing
// non-cancelled reservations for the same room. It carries the conflicting
// set so callers can show which bookings block the request.
type ConflictError struct {
	Conflicts []ConflictSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room_not_available: %d conflicting reservation(s)", len(e.Conflicts))
}
