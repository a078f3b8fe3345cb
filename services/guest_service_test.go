package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scottmsilver/ressy/models"
)

func TestCreateGuestValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	_, err := svc.CreateGuest(ctx, CreateGuestInput{Email: "a@example.com"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for missing name, got %v", err)
	}

	_, err = svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for missing contact, got %v", err)
	}

	_, err = svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "not-an-email"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for bad email, got %v", err)
	}

	_, err = svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Phone: "12"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for short phone, got %v", err)
	}

	guest, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Phone: "+1 (555) 123-4567"})
	if err != nil {
		t.Fatalf("CreateGuest with phone only: %v", err)
	}
	if guest.ID == 0 {
		t.Fatal("guest not persisted")
	}
}

func TestCreateGuestDuplicateDetection(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	_, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	_, err = svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice Again", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicateGuest) {
		t.Fatalf("want ErrDuplicateGuest, got %v", err)
	}

	_, err = svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice Again", Email: "alice@example.com", AllowDuplicate: true})
	if err != nil {
		t.Fatalf("CreateGuest with AllowDuplicate: %v", err)
	}
}

func TestFindGuests(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	if _, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice Johnson", Email: "alice@example.com"}); err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if _, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Bob Smith", Phone: "5551234567"}); err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	byName, err := svc.FindGuests(ctx, "johnson", "", "")
	if err != nil {
		t.Fatalf("FindGuests: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Alice Johnson" {
		t.Fatalf("by name = %+v", byName)
	}

	byPhone, err := svc.FindGuests(ctx, "", "", "5551234567")
	if err != nil {
		t.Fatalf("FindGuests: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Bob Smith" {
		t.Fatalf("by phone = %+v", byPhone)
	}
}

func TestUpdatePreferencesMerges(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	guest, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	if _, err := svc.UpdatePreferences(ctx, guest.ID, map[string]interface{}{"floor": "high"}); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	updated, err := svc.UpdatePreferences(ctx, guest.ID, map[string]interface{}{"smoking": false})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}

	if updated.Preferences["floor"] != "high" {
		t.Fatalf("existing preference lost: %+v", updated.Preferences)
	}
	if updated.Preferences["smoking"] != false {
		t.Fatalf("new preference missing: %+v", updated.Preferences)
	}
}

func TestAddContactEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	guest, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	if _, err := svc.AddContactEmail(ctx, guest.ID, "alice@work.example.com"); err != nil {
		t.Fatalf("AddContactEmail: %v", err)
	}
	// Same address again is a no-op, case-insensitively.
	updated, err := svc.AddContactEmail(ctx, guest.ID, "Alice@Work.example.com")
	if err != nil {
		t.Fatalf("AddContactEmail repeat: %v", err)
	}
	if string(updated.ContactEmails) != `["alice@work.example.com"]` {
		t.Fatalf("contact emails = %s", updated.ContactEmails)
	}

	if _, err := svc.AddContactEmail(ctx, guest.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestMergeGuests(t *testing.T) {
	db := newTestDB(t)
	room := seedRoom(t, db)
	svc := NewGuestService(db)
	reservations := NewReservationService(db)
	ctx := context.Background()

	primary, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	duplicate, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "A. Johnson", Phone: "5551234567"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	reservation, err := reservations.CreateReservation(ctx, CreateReservationInput{
		GuestID:   duplicate.ID,
		RoomID:    room.ID,
		StartDate: date(2026, 9, 1),
		EndDate:   date(2026, 9, 3),
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	family, err := svc.CreateFamily(ctx, "Johnson")
	if err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	if err := svc.AddFamilyMember(ctx, family.ID, duplicate.ID); err != nil {
		t.Fatalf("AddFamilyMember: %v", err)
	}
	if _, err := svc.AddContactEmail(ctx, duplicate.ID, "aj@work.example.com"); err != nil {
		t.Fatalf("AddContactEmail: %v", err)
	}

	merged, err := svc.MergeGuests(ctx, primary.ID, duplicate.ID)
	if err != nil {
		t.Fatalf("MergeGuests: %v", err)
	}

	if merged.Phone != "5551234567" {
		t.Fatalf("phone not carried over: %+v", merged)
	}
	if merged.FamilyID == nil || *merged.FamilyID != family.ID {
		t.Fatalf("family membership not carried over: %+v", merged)
	}
	if string(merged.ContactEmails) != `["aj@work.example.com"]` {
		t.Fatalf("contact emails not carried over: %s", merged.ContactEmails)
	}

	var moved models.Reservation
	if err := db.First(&moved, reservation.ID).Error; err != nil {
		t.Fatalf("load reservation: %v", err)
	}
	if moved.GuestID != primary.ID {
		t.Fatalf("reservation guest = %d, want %d", moved.GuestID, primary.ID)
	}

	if _, err := svc.GetGuest(ctx, duplicate.ID); !errors.Is(err, ErrGuestNotFound) {
		t.Fatalf("duplicate should be gone, got %v", err)
	}

	if _, err := svc.MergeGuests(ctx, primary.ID, primary.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("self-merge should fail validation, got %v", err)
	}
}

func TestFamilies(t *testing.T) {
	db := newTestDB(t)
	svc := NewGuestService(db)
	ctx := context.Background()

	alice, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	bob, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}

	family, err := svc.CreateFamily(ctx, "Johnson")
	if err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}

	if err := svc.AddFamilyMember(ctx, family.ID, alice.ID); err != nil {
		t.Fatalf("AddFamilyMember: %v", err)
	}
	if err := svc.AddFamilyMember(ctx, family.ID, bob.ID); err != nil {
		t.Fatalf("AddFamilyMember: %v", err)
	}

	// Primary contact must already be a member.
	if err := svc.SetPrimaryContact(ctx, family.ID, alice.ID); err != nil {
		t.Fatalf("SetPrimaryContact: %v", err)
	}

	outsider, err := svc.CreateGuest(ctx, CreateGuestInput{Name: "Cara", Email: "cara@example.com"})
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if err := svc.SetPrimaryContact(ctx, family.ID, outsider.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("want validation error for non-member primary, got %v", err)
	}

	members, err := svc.FamilyMembers(ctx, family.ID)
	if err != nil {
		t.Fatalf("FamilyMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
}
