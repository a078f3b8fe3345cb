package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/scottmsilver/ressy/models"
)

// ErrDuplicateRoomNumber is returned when a room number already exists in the
// target building.
var ErrDuplicateRoomNumber = errors.New("duplicate_room_number")

// PropertyService manages the property > building > room > bed hierarchy.
type PropertyService struct {
	DB *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{DB: db}
}

func (s *PropertyService) CreateProperty(ctx context.Context, name, address string) (*models.Property, error) {
	if name == "" {
		return nil, validationError("property name is required")
	}
	property := models.Property{Name: name, Address: address}
	if err := s.DB.WithContext(ctx).Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return &property, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, propertyID uint) (*models.Property, error) {
	var property models.Property
	err := s.DB.WithContext(ctx).
		Preload("Buildings.Rooms.Beds").
		First(&property, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}
	return &property, nil
}

// ListProperties returns properties ordered by id, optionally filtered by a
// name substring. limit <= 0 means no page limit.
func (s *PropertyService) ListProperties(ctx context.Context, name string, limit, offset int) ([]models.Property, error) {
	query := s.DB.WithContext(ctx).Model(&models.Property{}).Order("id ASC")
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// DeleteProperty removes the property and everything under it. The cascade
// runs bottom-up in one transaction so a failure leaves the hierarchy intact.
func (s *PropertyService) DeleteProperty(ctx context.Context, propertyID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.First(&property, propertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to load property %d: %w", propertyID, err)
		}

		var buildingIDs []uint
		if err := tx.Model(&models.Building{}).Where("property_id = ?", propertyID).Pluck("id", &buildingIDs).Error; err != nil {
			return fmt.Errorf("failed to list buildings for property %d: %w", propertyID, err)
		}

		if len(buildingIDs) > 0 {
			var roomIDs []uint
			if err := tx.Model(&models.Room{}).Where("building_id IN ?", buildingIDs).Pluck("id", &roomIDs).Error; err != nil {
				return fmt.Errorf("failed to list rooms for property %d: %w", propertyID, err)
			}
			if len(roomIDs) > 0 {
				if err := tx.Where("room_id IN ?", roomIDs).Delete(&models.Reservation{}).Error; err != nil {
					return fmt.Errorf("failed to delete reservations: %w", err)
				}
				if err := tx.Where("room_id IN ?", roomIDs).Delete(&models.Bed{}).Error; err != nil {
					return fmt.Errorf("failed to delete beds: %w", err)
				}
				if err := tx.Where("building_id IN ?", buildingIDs).Delete(&models.Room{}).Error; err != nil {
					return fmt.Errorf("failed to delete rooms: %w", err)
				}
			}
			if err := tx.Where("property_id = ?", propertyID).Delete(&models.Building{}).Error; err != nil {
				return fmt.Errorf("failed to delete buildings: %w", err)
			}
		}

		if err := tx.Delete(&property).Error; err != nil {
			return fmt.Errorf("failed to delete property %d: %w", propertyID, err)
		}
		return nil
	})
}

func (s *PropertyService) AddBuilding(ctx context.Context, propertyID uint, name string) (*models.Building, error) {
	if name == "" {
		return nil, validationError("building name is required")
	}

	var property models.Property
	if err := s.DB.WithContext(ctx).Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	building := models.Building{Name: name, PropertyID: propertyID}
	if err := s.DB.WithContext(ctx).Create(&building).Error; err != nil {
		return nil, fmt.Errorf("failed to create building: %w", err)
	}
	return &building, nil
}

func (s *PropertyService) RenameBuilding(ctx context.Context, buildingID uint, name string) (*models.Building, error) {
	if name == "" {
		return nil, validationError("building name is required")
	}

	db := s.DB.WithContext(ctx)

	var building models.Building
	if err := db.First(&building, buildingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to load building %d: %w", buildingID, err)
	}

	building.Name = name
	if err := db.Model(&building).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("failed to rename building %d: %w", buildingID, err)
	}
	return &building, nil
}

// DeleteBuilding removes the building with its rooms, beds and reservations.
func (s *PropertyService) DeleteBuilding(ctx context.Context, buildingID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var building models.Building
		if err := tx.First(&building, buildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBuildingNotFound
			}
			return fmt.Errorf("failed to load building %d: %w", buildingID, err)
		}

		var roomIDs []uint
		if err := tx.Model(&models.Room{}).Where("building_id = ?", buildingID).Pluck("id", &roomIDs).Error; err != nil {
			return fmt.Errorf("failed to list rooms for building %d: %w", buildingID, err)
		}
		if len(roomIDs) > 0 {
			if err := tx.Where("room_id IN ?", roomIDs).Delete(&models.Reservation{}).Error; err != nil {
				return fmt.Errorf("failed to delete reservations: %w", err)
			}
			if err := tx.Where("room_id IN ?", roomIDs).Delete(&models.Bed{}).Error; err != nil {
				return fmt.Errorf("failed to delete beds: %w", err)
			}
			if err := tx.Where("building_id = ?", buildingID).Delete(&models.Room{}).Error; err != nil {
				return fmt.Errorf("failed to delete rooms: %w", err)
			}
		}

		if err := tx.Delete(&building).Error; err != nil {
			return fmt.Errorf("failed to delete building %d: %w", buildingID, err)
		}
		return nil
	})
}

type AddRoomInput struct {
	BuildingID uint
	Name       string
	RoomNumber string
}

// AddRoom creates a room in the building. Room numbers are unique per
// building; a duplicate fails with ErrDuplicateRoomNumber whether it is
// caught by the pre-check or by the unique index.
func (s *PropertyService) AddRoom(ctx context.Context, in AddRoomInput) (*models.Room, error) {
	if in.RoomNumber == "" {
		return nil, validationError("room number is required")
	}

	db := s.DB.WithContext(ctx)

	var building models.Building
	if err := db.Select("id").First(&building, in.BuildingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to load building %d: %w", in.BuildingID, err)
	}

	var count int64
	if err := db.Model(&models.Room{}).
		Where("building_id = ? AND room_number = ?", in.BuildingID, in.RoomNumber).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check room number: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateRoomNumber
	}

	room := models.Room{
		Name:       in.Name,
		RoomNumber: in.RoomNumber,
		BuildingID: in.BuildingID,
	}
	if err := db.Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateRoomNumber
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

// GetRoom returns the room with beds loaded so Capacity is meaningful.
func (s *PropertyService) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Preload("Beds").First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	return &room, nil
}

func (s *PropertyService) DeleteRoom(ctx context.Context, roomID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to load room %d: %w", roomID, err)
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to delete reservations: %w", err)
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Bed{}).Error; err != nil {
			return fmt.Errorf("failed to delete beds: %w", err)
		}
		if err := tx.Delete(&room).Error; err != nil {
			return fmt.Errorf("failed to delete room %d: %w", roomID, err)
		}
		return nil
	})
}

// UpdateRoomAmenities replaces the room's amenity list.
func (s *PropertyService) UpdateRoomAmenities(ctx context.Context, roomID uint, amenities []string) (*models.Room, error) {
	var room models.Room
	db := s.DB.WithContext(ctx)
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	encoded, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amenities: %w", err)
	}
	room.Amenities = encoded
	if err := db.Model(&room).Update("amenities", room.Amenities).Error; err != nil {
		return nil, fmt.Errorf("failed to update amenities for room %d: %w", roomID, err)
	}
	return &room, nil
}

func (s *PropertyService) AddBed(ctx context.Context, roomID uint, bedType, bedSubType string) (*models.Bed, error) {
	if !models.ValidBedType(bedType) {
		return nil, validationError("unknown bed type %q", bedType)
	}
	if bedSubType == "" {
		bedSubType = string(models.BedSubTypeStandard)
	}
	if !models.ValidBedSubType(bedSubType) {
		return nil, validationError("unknown bed subtype %q", bedSubType)
	}

	db := s.DB.WithContext(ctx)

	var room models.Room
	if err := db.Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	bed := models.Bed{
		RoomID:     roomID,
		BedType:    models.BedType(bedType),
		BedSubType: models.BedSubType(bedSubType),
	}
	if err := db.Create(&bed).Error; err != nil {
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}
	return &bed, nil
}

func (s *PropertyService) RemoveBed(ctx context.Context, bedID uint) error {
	result := s.DB.WithContext(ctx).Delete(&models.Bed{}, bedID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bed %d: %w", bedID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBedNotFound
	}
	return nil
}

type GenerateRandomInput struct {
	Name      string
	Buildings int
	Rooms     int
	Seed      int64
}

// GenerateRandomProperty builds a whole property with buildings, numbered
// rooms and a random bed mix, for demos and load tests. A fixed Seed makes
// the layout reproducible.
func (s *PropertyService) GenerateRandomProperty(ctx context.Context, in GenerateRandomInput) (*models.Property, error) {
	if in.Buildings <= 0 {
		in.Buildings = 1
	}
	if in.Rooms <= 0 {
		in.Rooms = 10
	}
	if in.Name == "" {
		in.Name = "Generated Property"
	}

	rng := rand.New(rand.NewSource(in.Seed))
	bedTypes := []models.BedType{models.BedTypeSingle, models.BedTypeDouble, models.BedTypeQueen, models.BedTypeKing}

	var property models.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property = models.Property{Name: in.Name, Address: "generated"}
		if err := tx.Create(&property).Error; err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}

		for b := 1; b <= in.Buildings; b++ {
			building := models.Building{
				Name:       fmt.Sprintf("Building %d", b),
				PropertyID: property.ID,
			}
			if err := tx.Create(&building).Error; err != nil {
				return fmt.Errorf("failed to create building: %w", err)
			}

			for r := 1; r <= in.Rooms; r++ {
				room := models.Room{
					Name:       fmt.Sprintf("Room %d%02d", b, r),
					RoomNumber: fmt.Sprintf("%d%02d", b, r),
					BuildingID: building.ID,
				}
				if err := tx.Create(&room).Error; err != nil {
					return fmt.Errorf("failed to create room: %w", err)
				}

				beds := 1 + rng.Intn(2)
				for i := 0; i < beds; i++ {
					bed := models.Bed{
						RoomID:     room.ID,
						BedType:    bedTypes[rng.Intn(len(bedTypes))],
						BedSubType: models.BedSubTypeStandard,
					}
					if err := tx.Create(&bed).Error; err != nil {
						return fmt.Errorf("failed to create bed: %w", err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProperty(ctx, property.ID)
}

// isDuplicateKey recognizes a unique constraint violation from MySQL or from
// gorm's portable translation (sqlite in tests).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
