package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scottmsilver/ressy/models"
)

// ErrDuplicateGuest is returned when a guest with the same email or phone
// already exists and the caller did not ask to create anyway.
var ErrDuplicateGuest = errors.New("duplicate_guest")

// GuestService manages guest records and the families that group them.
type GuestService struct {
	DB *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{DB: db}
}

type CreateGuestInput struct {
	Name  string
	Email string
	Phone string

	// AllowDuplicate skips the email/phone duplicate check.
	AllowDuplicate bool
}

// CreateGuest requires a name plus at least one contact method. Email must
// contain '@'; phone must carry at least seven digits.
func (s *GuestService) CreateGuest(ctx context.Context, in CreateGuestInput) (*models.Guest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" {
		return nil, validationError("guest name is required")
	}
	if in.Email == "" && in.Phone == "" {
		return nil, validationError("at least one contact method (email or phone) is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return nil, validationError("invalid email %q", in.Email)
	}
	if in.Phone != "" && digitCount(in.Phone) < 7 {
		return nil, validationError("invalid phone %q", in.Phone)
	}

	db := s.DB.WithContext(ctx)

	if !in.AllowDuplicate {
		existing, err := s.findByContact(db, in.Email, in.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: matches guest %d", ErrDuplicateGuest, existing.ID)
		}
	}

	guest := models.Guest{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Preferences: datatypes.JSONMap{},
	}
	if err := db.Create(&guest).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return &guest, nil
}

func (s *GuestService) GetGuest(ctx context.Context, guestID uint) (*models.Guest, error) {
	var guest models.Guest
	if err := s.DB.WithContext(ctx).First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}
	return &guest, nil
}

// FindGuests searches by name substring, exact email or exact phone; empty
// parameters are ignored.
func (s *GuestService) FindGuests(ctx context.Context, name, email, phone string) ([]models.Guest, error) {
	query := s.DB.WithContext(ctx).Model(&models.Guest{})
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if email != "" {
		query = query.Where("email = ?", email)
	}
	if phone != "" {
		query = query.Where("phone = ?", phone)
	}

	var guests []models.Guest
	if err := query.Order("id ASC").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("failed to search guests: %w", err)
	}
	return guests, nil
}

// UpdatePreferences merges the given keys into the guest's preference map;
// existing keys not mentioned are kept.
func (s *GuestService) UpdatePreferences(ctx context.Context, guestID uint, prefs map[string]interface{}) (*models.Guest, error) {
	db := s.DB.WithContext(ctx)

	var guest models.Guest
	if err := db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}

	if guest.Preferences == nil {
		guest.Preferences = datatypes.JSONMap{}
	}
	for k, v := range prefs {
		guest.Preferences[k] = v
	}
	if err := db.Model(&guest).Update("preferences", guest.Preferences).Error; err != nil {
		return nil, fmt.Errorf("failed to update preferences for guest %d: %w", guestID, err)
	}
	return &guest, nil
}

// AddContactEmail appends a secondary email to the guest; duplicates are
// ignored.
func (s *GuestService) AddContactEmail(ctx context.Context, guestID uint, email string) (*models.Guest, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, validationError("invalid email %q", email)
	}

	db := s.DB.WithContext(ctx)

	var guest models.Guest
	if err := db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}

	var emails []string
	if len(guest.ContactEmails) > 0 {
		if err := json.Unmarshal(guest.ContactEmails, &emails); err != nil {
			return nil, fmt.Errorf("failed to decode contact emails for guest %d: %w", guestID, err)
		}
	}
	for _, e := range emails {
		if strings.EqualFold(e, email) {
			return &guest, nil
		}
	}
	emails = append(emails, email)

	encoded, err := json.Marshal(emails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact emails: %w", err)
	}
	guest.ContactEmails = encoded
	if err := db.Model(&guest).Update("contact_emails", guest.ContactEmails).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact emails for guest %d: %w", guestID, err)
	}
	return &guest, nil
}

// MergeGuests folds the duplicate guest into the primary one: reservations
// move over, contact details and preferences fill gaps on the primary, and
// the duplicate row is removed.
func (s *GuestService) MergeGuests(ctx context.Context, primaryID, duplicateID uint) (*models.Guest, error) {
	if primaryID == duplicateID {
		return nil, validationError("cannot merge a guest into itself")
	}

	var merged models.Guest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var primary, duplicate models.Guest
		if err := tx.First(&primary, primaryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return fmt.Errorf("failed to load guest %d: %w", primaryID, err)
		}
		if err := tx.First(&duplicate, duplicateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return fmt.Errorf("failed to load guest %d: %w", duplicateID, err)
		}

		if err := tx.Model(&models.Reservation{}).
			Where("guest_id = ?", duplicateID).
			Update("guest_id", primaryID).Error; err != nil {
			return fmt.Errorf("failed to move reservations: %w", err)
		}

		if primary.Email == "" {
			primary.Email = duplicate.Email
		}
		if primary.Phone == "" {
			primary.Phone = duplicate.Phone
		}
		if primary.FamilyID == nil {
			primary.FamilyID = duplicate.FamilyID
		}
		if primary.Preferences == nil {
			primary.Preferences = datatypes.JSONMap{}
		}
		for k, v := range duplicate.Preferences {
			if _, ok := primary.Preferences[k]; !ok {
				primary.Preferences[k] = v
			}
		}

		emails, err := mergeContactEmails(primary.ContactEmails, duplicate.ContactEmails, duplicate.Email)
		if err != nil {
			return err
		}
		primary.ContactEmails = emails

		if err := tx.Save(&primary).Error; err != nil {
			return fmt.Errorf("failed to update guest %d: %w", primaryID, err)
		}
		if err := tx.Delete(&duplicate).Error; err != nil {
			return fmt.Errorf("failed to delete guest %d: %w", duplicateID, err)
		}
		merged = primary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *GuestService) CreateFamily(ctx context.Context, name string) (*models.Family, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("family name is required")
	}
	family := models.Family{Name: name}
	if err := s.DB.WithContext(ctx).Create(&family).Error; err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}
	return &family, nil
}

func (s *GuestService) AddFamilyMember(ctx context.Context, familyID, guestID uint) error {
	db := s.DB.WithContext(ctx)

	var family models.Family
	if err := db.Select("id").First(&family, familyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFamilyNotFound
		}
		return fmt.Errorf("failed to load family %d: %w", familyID, err)
	}

	var guest models.Guest
	if err := db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestNotFound
		}
		return fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}

	if err := db.Model(&guest).Update("family_id", familyID).Error; err != nil {
		return fmt.Errorf("failed to add guest %d to family %d: %w", guestID, familyID, err)
	}
	return nil
}

// SetPrimaryContact marks a member as the family's primary contact; the
// guest must already belong to the family.
func (s *GuestService) SetPrimaryContact(ctx context.Context, familyID, guestID uint) error {
	db := s.DB.WithContext(ctx)

	var family models.Family
	if err := db.First(&family, familyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFamilyNotFound
		}
		return fmt.Errorf("failed to load family %d: %w", familyID, err)
	}

	var guest models.Guest
	if err := db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestNotFound
		}
		return fmt.Errorf("failed to load guest %d: %w", guestID, err)
	}
	if guest.FamilyID == nil || *guest.FamilyID != familyID {
		return validationError("guest %d is not a member of family %d", guestID, familyID)
	}

	if err := db.Model(&family).Update("primary_contact_id", guestID).Error; err != nil {
		return fmt.Errorf("failed to set primary contact for family %d: %w", familyID, err)
	}
	return nil
}

func (s *GuestService) FamilyMembers(ctx context.Context, familyID uint) ([]models.Guest, error) {
	db := s.DB.WithContext(ctx)

	var family models.Family
	if err := db.Select("id").First(&family, familyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to load family %d: %w", familyID, err)
	}

	var guests []models.Guest
	if err := db.Where("family_id = ?", familyID).Order("id ASC").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return guests, nil
}

func (s *GuestService) findByContact(db *gorm.DB, email, phone string) (*models.Guest, error) {
	query := db.Model(&models.Guest{})
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	case phone != "":
		query = query.Where("phone = ?", phone)
	default:
		return nil, nil
	}

	var guest models.Guest
	if err := query.First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check for duplicate guest: %w", err)
	}
	return &guest, nil
}

// mergeContactEmails unions two JSON email lists, folding in the duplicate's
// primary email so no contact point is lost by a merge.
func mergeContactEmails(a, b datatypes.JSON, extra string) (datatypes.JSON, error) {
	var out []string
	seen := map[string]bool{}

	add := func(raw datatypes.JSON) error {
		if len(raw) == 0 {
			return nil
		}
		var emails []string
		if err := json.Unmarshal(raw, &emails); err != nil {
			return fmt.Errorf("failed to decode contact emails: %w", err)
		}
		for _, e := range emails {
			key := strings.ToLower(e)
			if !seen[key] {
				seen[key] = true
				out = append(out, e)
			}
		}
		return nil
	}

	if err := add(a); err != nil {
		return nil, err
	}
	if err := add(b); err != nil {
		return nil, err
	}
	if extra != "" && !seen[strings.ToLower(extra)] {
		out = append(out, extra)
	}

	if len(out) == 0 {
		return a, nil
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact emails: %w", err)
	}
	return encoded, nil
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
