package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/scottmsilver/ressy/models"
)

// AvailabilityService answers "is room R free for [start, end)?" and
// enumerates the conflicting reservations when it is not. It is the single
// home for interval math; nothing else in the codebase re-implements the
// overlap test.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// ConflictSummary describes one blocking reservation with just enough detail
// to render a human-readable conflict list.
type ConflictSummary struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	GuestName string    `json:"guest_name"`
}

type AvailabilityResult struct {
	Available bool              `json:"available"`
	Conflicts []ConflictSummary `json:"conflicts,omitempty"`
}

// RoomAvailability is one room's slice of a property-wide availability view.
type RoomAvailability struct {
	ID           uint              `json:"id"`
	RoomNumber   string            `json:"room_number"`
	Name         string            `json:"name"`
	Reservations []ConflictSummary `json:"reservations,omitempty"`
}

type PropertyAvailabilityResult struct {
	TotalRooms     int                `json:"total_rooms"`
	AvailableRooms []RoomAvailability `json:"available_rooms"`
	OccupiedRooms  []RoomAvailability `json:"occupied_rooms"`
}

// CheckAvailability is a pure read: it never writes and may be called both as
// a pre-check and from inside reservation creation (which re-runs the same
// query under its room lock).
func (s *AvailabilityService) CheckAvailability(ctx context.Context, roomID uint, start, end time.Time) (AvailabilityResult, error) {
	start = atMidnightUTC(start)
	end = atMidnightUTC(end)
	if !start.Before(end) {
		return AvailabilityResult{}, ErrInvalidRange
	}

	var room models.Room
	if err := s.DB.WithContext(ctx).Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AvailabilityResult{}, ErrRoomNotFound
		}
		return AvailabilityResult{}, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	overlapping, err := findOverlapping(s.DB.WithContext(ctx), roomID, start, end)
	if err != nil {
		return AvailabilityResult{}, err
	}

	return AvailabilityResult{
		Available: len(overlapping) == 0,
		Conflicts: summarizeConflicts(overlapping),
	}, nil
}

// CheckPropertyAvailability splits every room of the property into available
// and occupied for the given range.
func (s *AvailabilityService) CheckPropertyAvailability(ctx context.Context, propertyID uint, start, end time.Time) (PropertyAvailabilityResult, error) {
	start = atMidnightUTC(start)
	end = atMidnightUTC(end)
	if !start.Before(end) {
		return PropertyAvailabilityResult{}, ErrInvalidRange
	}

	db := s.DB.WithContext(ctx)

	var property models.Property
	if err := db.Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PropertyAvailabilityResult{}, ErrPropertyNotFound
		}
		return PropertyAvailabilityResult{}, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	rooms, err := roomsForProperty(db, propertyID)
	if err != nil {
		return PropertyAvailabilityResult{}, err
	}

	result := PropertyAvailabilityResult{
		TotalRooms:     len(rooms),
		AvailableRooms: []RoomAvailability{},
		OccupiedRooms:  []RoomAvailability{},
	}

	for _, room := range rooms {
		overlapping, err := findOverlapping(db, room.ID, start, end)
		if err != nil {
			return PropertyAvailabilityResult{}, err
		}
		entry := RoomAvailability{ID: room.ID, RoomNumber: room.RoomNumber, Name: room.Name}
		if len(overlapping) == 0 {
			result.AvailableRooms = append(result.AvailableRooms, entry)
			continue
		}
		entry.Reservations = summarizeConflicts(overlapping)
		result.OccupiedRooms = append(result.OccupiedRooms, entry)
	}

	return result, nil
}

// findOverlapping fetches the non-cancelled reservations for roomID whose
// interval intersects [start, end). Two half-open intervals [a,b) and [c,d)
// overlap iff a < d && c < b, which is why a checkout on day D never
// conflicts with a check-in on day D.
func findOverlapping(tx *gorm.DB, roomID uint, start, end time.Time) ([]models.Reservation, error) {
	var overlapping []models.Reservation
	err := tx.
		Preload("Guest").
		Where("room_id = ? AND status <> ? AND start_date < ? AND end_date > ?",
			roomID, models.ReservationCancelled, end, start).
		Order("start_date ASC").
		Find(&overlapping).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	return overlapping, nil
}

func summarizeConflicts(overlapping []models.Reservation) []ConflictSummary {
	if len(overlapping) == 0 {
		return nil
	}
	conflicts := make([]ConflictSummary, 0, len(overlapping))
	for _, r := range overlapping {
		conflicts = append(conflicts, ConflictSummary{
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
			GuestName: r.Guest.Name,
		})
	}
	return conflicts
}

// roomsForProperty lists every room under every building of the property.
func roomsForProperty(tx *gorm.DB, propertyID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := tx.
		Joins("JOIN buildings ON buildings.id = rooms.building_id").
		Where("buildings.property_id = ?", propertyID).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for property %d: %w", propertyID, err)
	}
	return rooms, nil
}
