package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scottmsilver/ressy/models"
)

func TestCreateReservation(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
		NumGuests: 2,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if reservation.Status != models.ReservationConfirmed {
		t.Fatalf("status = %q, want confirmed", reservation.Status)
	}
	if reservation.ReferenceCode == "" {
		t.Fatal("reference code must be set")
	}
	if got := reservation.Nights(); got != 4 {
		t.Fatalf("nights = %d, want 4", got)
	}
	if !reservation.StartDate.Equal(date(2026, 9, 1)) || !reservation.EndDate.Equal(date(2026, 9, 5)) {
		t.Fatalf("dates not normalized: %v .. %v", reservation.StartDate, reservation.EndDate)
	}
}

func TestCreateReservationConflict(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	alice := seedGuest(t, db, "Alice", "alice@example.com")
	bob := seedGuest(t, db, "Bob", "bob@example.com")
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   alice.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("first CreateReservation: %v", err)
	}

	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   bob.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 3),
		EndDate:   date(2026, 9, 6),
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want ConflictError, got %v", err)
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0].GuestName != "Alice" {
		t.Fatalf("conflicts = %+v", conflict.Conflicts)
	}

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	if count != 1 {
		t.Fatalf("reservation count = %d, want 1 (failed create must write nothing)", count)
	}
}

func TestCreateReservationSameDayTurnover(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	alice := seedGuest(t, db, "Alice", "alice@example.com")
	bob := seedGuest(t, db, "Bob", "bob@example.com")
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   alice.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("first CreateReservation: %v", err)
	}

	// Bob checks in the day Alice checks out.
	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   bob.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 5),
		EndDate:   date(2026, 9, 8),
	})
	if err != nil {
		t.Fatalf("back-to-back CreateReservation: %v", err)
	}
}

func TestCreateReservationCapacity(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db) // one queen bed, capacity 2
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
		NumGuests: 3,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for capacity, got %v", err)
	}

	// Zero guests means "not recorded"; no capacity check.
	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
	})
	if err != nil {
		t.Fatalf("CreateReservation without num_guests: %v", err)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 5),
		EndDate:   date(2026, 9, 5),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange, got %v", err)
	}

	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    999,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
	})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("want ErrRoomNotFound, got %v", err)
	}

	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   999,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
	})
	if !errors.Is(err, ErrGuestNotFound) {
		t.Fatalf("want ErrGuestNotFound, got %v", err)
	}
}

// Dates carrying times of day normalize to calendar days before the range
// check, so a same-day pair like 01:00 to 23:00 is a zero-night request and
// must be rejected, never persisted.
func TestCreateReservationSameDayWithTimes(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange for same-day times, got %v", err)
	}

	var count int64
	db.Model(&models.Reservation{}).Count(&count)
	if count != 0 {
		t.Fatalf("reservation count = %d, want 0", count)
	}

	// A pair spanning a real night still books, with the times dropped.
	reservation, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if !reservation.StartDate.Equal(date(2026, 9, 1)) || !reservation.EndDate.Equal(date(2026, 9, 2)) {
		t.Fatalf("dates not normalized: %v .. %v", reservation.StartDate, reservation.EndDate)
	}
}

// Two racing requests for the same room and range: exactly one wins, the
// other gets the conflict, and exactly one row lands in the store.
func TestCreateReservationConcurrent(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	alice := seedGuest(t, db, "Alice", "alice@example.com")
	bob := seedGuest(t, db, "Bob", "bob@example.com")
	svc := NewReservationService(db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, guestID := range []uint{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, guestID uint) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(context.Background(), CreateReservationInput{
				GuestID:   guestID,
				RoomID:    room.ID,
				StartDate: date(2026, 9, 1),
				EndDate:   date(2026, 9, 5),
			})
		}(i, guestID)
	}
	wg.Wait()

	succeeded := 0
	conflicted := 0
	for _, err := range errs {
		var conflict *ConflictError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &conflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("succeeded = %d, conflicted = %d, want 1 and 1", succeeded, conflicted)
	}

	var count int64
	db.Model(&models.Reservation{}).Where("status <> ?", models.ReservationCancelled).Count(&count)
	if count != 1 {
		t.Fatalf("active reservation count = %d, want 1", count)
	}
}

func TestCancelReservationIdempotent(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	reservation, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if err := svc.CancelReservation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := svc.CancelReservation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}

	got, err := svc.GetReservation(context.Background(), reservation.ID)
	if err != nil {
		t.Fatalf("GetReservation: %v", err)
	}
	if got.Status != models.ReservationCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}

	if err := svc.CancelReservation(context.Background(), 999); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("want ErrReservationNotFound, got %v", err)
	}
}

func TestCancelFreesInterval(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	alice := seedGuest(t, db, "Alice", "alice@example.com")
	bob := seedGuest(t, db, "Bob", "bob@example.com")
	svc := NewReservationService(db)

	first, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   alice.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if err := svc.CancelReservation(context.Background(), first.ID); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}

	_, err = svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   bob.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("rebooking a cancelled interval should succeed, got %v", err)
	}
}

func TestGuestHistory(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	early, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	late, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 10, 1),
		EndDate:   date(2026, 10, 3),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if err := svc.CancelReservation(context.Background(), early.ID); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}

	active, err := svc.GuestHistory(context.Background(), guest.ID, false)
	if err != nil {
		t.Fatalf("GuestHistory: %v", err)
	}
	if len(active) != 1 || active[0].ID != late.ID {
		t.Fatalf("active history = %+v, want only reservation %d", active, late.ID)
	}

	all, err := svc.GuestHistory(context.Background(), guest.ID, true)
	if err != nil {
		t.Fatalf("GuestHistory: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("full history length = %d, want 2", len(all))
	}
	if all[0].ID != late.ID {
		t.Fatalf("history not newest-first: %+v", all)
	}
}

func TestPropertyReservations(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	guest := seedGuest(t, db, "Alice", "alice@example.com")
	svc := NewReservationService(db)

	var building models.Building
	if err := db.First(&building, room.BuildingID).Error; err != nil {
		t.Fatalf("load building: %v", err)
	}

	_, err := svc.CreateReservation(context.Background(), CreateReservationInput{
		GuestID:   guest.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 5),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	result, err := svc.PropertyReservations(context.Background(), building.PropertyID, date(2026, 9, 1), date(2026, 10, 1))
	if err != nil {
		t.Fatalf("PropertyReservations: %v", err)
	}
	if result.TotalRooms != 1 || len(result.Reservations) != 1 {
		t.Fatalf("result = %+v, want 1 room and 1 reservation", result)
	}

	outside, err := svc.PropertyReservations(context.Background(), building.PropertyID, date(2026, 10, 1), date(2026, 11, 1))
	if err != nil {
		t.Fatalf("PropertyReservations: %v", err)
	}
	if len(outside.Reservations) != 0 {
		t.Fatalf("want no reservations outside range, got %d", len(outside.Reservations))
	}
}
