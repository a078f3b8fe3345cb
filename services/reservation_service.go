package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scottmsilver/ressy/models"
)

// ReservationService is the sole writer of reservation state. Creation
// re-runs the overlap check and inserts the row inside one transaction that
// holds a FOR UPDATE lock on the room, so concurrent check-then-write
// sequences for the same room serialize; different rooms proceed in
// parallel.
type ReservationService struct {
	DB *gorm.DB
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{DB: db}
}

type CreateReservationInput struct {
	GuestID         uint
	RoomID          uint
	StartDate       time.Time
	EndDate         time.Time
	NumGuests       int
	SpecialRequests string
}

type PropertyReservationsResult struct {
	TotalRooms   int                  `json:"total_rooms"`
	Reservations []models.Reservation `json:"reservations"`
}

// CreateReservation books the room for [StartDate, EndDate) with status
// confirmed. It fails with ErrInvalidRange, ErrRoomNotFound,
// ErrGuestNotFound, a wrapped ErrValidation when NumGuests exceeds the
// room's bed capacity, or *ConflictError when the interval is taken. Any
// failure commits nothing.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	// Normalize before validating: times of day must not let a
	// same-calendar-day pair slip through as a zero-night stay.
	start := atMidnightUTC(in.StartDate)
	end := atMidnightUTC(in.EndDate)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	if in.NumGuests < 0 {
		return nil, validationError("num_guests cannot be negative")
	}

	var created models.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the room row; this is the per-room serialization point for
		// the check-then-write sequence below.
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room %d: %w", in.RoomID, err)
		}

		var guest models.Guest
		if err := tx.First(&guest, in.GuestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return fmt.Errorf("failed to load guest %d: %w", in.GuestID, err)
		}

		// NumGuests is optional metadata; only validate capacity when the
		// caller actually supplied it.
		if in.NumGuests > 0 {
			var beds []models.Bed
			if err := tx.Where("room_id = ?", room.ID).Find(&beds).Error; err != nil {
				return fmt.Errorf("failed to load beds for room %d: %w", room.ID, err)
			}
			capacity := 0
			for _, bed := range beds {
				capacity += bed.Capacity()
			}
			if in.NumGuests > capacity {
				return validationError("room capacity exceeded: %d guests for %d places", in.NumGuests, capacity)
			}
		}

		overlapping, err := findOverlapping(tx, in.RoomID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return &ConflictError{Conflicts: summarizeConflicts(overlapping)}
		}

		created = models.Reservation{
			ReferenceCode:   uuid.NewString(),
			GuestID:         in.GuestID,
			RoomID:          in.RoomID,
			StartDate:       start,
			EndDate:         end,
			NumGuests:       in.NumGuests,
			SpecialRequests: in.SpecialRequests,
			Status:          models.ReservationConfirmed,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelReservation flips the reservation to cancelled, freeing its interval
// immediately. Cancelling an already-cancelled reservation is a no-op, not
// an error. Dates and room never change; edits go through cancel + recreate.
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
		}

		if reservation.Status == models.ReservationCancelled {
			return nil
		}

		if err := tx.Model(&reservation).Update("status", models.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %d: %w", reservationID, err)
		}
		return nil
	})
}

// GetReservation returns the full record including current status, with
// guest and room loaded for display.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.DB.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		First(&reservation, reservationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
	}
	return &reservation, nil
}

// GuestHistory lists a guest's reservations newest-first. Cancelled rows are
// kept for history and included only on request.
func (s *ReservationService) GuestHistory(ctx context.Context, guestID uint, includeCancelled bool) ([]models.Reservation, error) {
	db := s.DB.WithContext(ctx)

	var guest models.Guest
	if err := db.Select("id").First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}

	query := db.Preload("Room").Where("guest_id = ?", guestID)
	if !includeCancelled {
		query = query.Where("status <> ?", models.ReservationCancelled)
	}

	var reservations []models.Reservation
	if err := query.Order("start_date DESC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations for guest %d: %w", guestID, err)
	}
	return reservations, nil
}

// PropertyReservations lists the non-cancelled reservations touching
// [start, end) across all rooms of the property.
func (s *ReservationService) PropertyReservations(ctx context.Context, propertyID uint, start, end time.Time) (PropertyReservationsResult, error) {
	start = atMidnightUTC(start)
	end = atMidnightUTC(end)
	if !start.Before(end) {
		return PropertyReservationsResult{}, ErrInvalidRange
	}

	db := s.DB.WithContext(ctx)

	var property models.Property
	if err := db.Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PropertyReservationsResult{}, ErrPropertyNotFound
		}
		return PropertyReservationsResult{}, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	rooms, err := roomsForProperty(db, propertyID)
	if err != nil {
		return PropertyReservationsResult{}, err
	}

	result := PropertyReservationsResult{
		TotalRooms:   len(rooms),
		Reservations: []models.Reservation{},
	}
	if len(rooms) == 0 {
		return result, nil
	}

	roomIDs := make([]uint, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}

	err = db.
		Preload("Guest").
		Preload("Room").
		Where("room_id IN ? AND status <> ? AND start_date < ? AND end_date > ?",
			roomIDs, models.ReservationCancelled, end, start).
		Order("start_date ASC").
		Find(&result.Reservations).Error
	if err != nil {
		return PropertyReservationsResult{}, fmt.Errorf("failed to list reservations for property %d: %w", propertyID, err)
	}
	return result, nil
}

// atMidnightUTC truncates to the calendar date; reservations are date-only.
func atMidnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
