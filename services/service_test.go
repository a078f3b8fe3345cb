package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/scottmsilver/ressy/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A single connection keeps every session on the same in-memory
	// database and serializes concurrent transactions.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Property{},
		&models.Building{},
		&models.Room{},
		&models.Bed{},
		&models.Family{},
		&models.Guest{},
		&models.Reservation{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedRoom creates a property with one building and one room holding a
// queen bed, returning the room.
func seedRoom(t *testing.T, db *gorm.DB) models.Room {
	t.Helper()

	property := models.Property{Name: "Seaside Inn", Address: "1 Shore Rd"}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	building := models.Building{Name: "Main", PropertyID: property.ID}
	if err := db.Create(&building).Error; err != nil {
		t.Fatalf("seed building: %v", err)
	}
	room := models.Room{Name: "Ocean View", RoomNumber: "101", BuildingID: building.ID}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	bed := models.Bed{RoomID: room.ID, BedType: models.BedTypeQueen, BedSubType: models.BedSubTypeStandard}
	if err := db.Create(&bed).Error; err != nil {
		t.Fatalf("seed bed: %v", err)
	}
	return room
}

func seedGuest(t *testing.T, db *gorm.DB, name, email string) models.Guest {
	t.Helper()

	guest := models.Guest{Name: name, Email: email}
	if err := db.Create(&guest).Error; err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	return guest
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
