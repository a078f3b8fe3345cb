package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/scottmsilver/ressy/models"
)

const defaultNightlyRate = 100.0

// forecastConfidence is fixed until per-property rate history exists.
const forecastConfidence = 0.8

// ReportService derives occupancy, revenue and forecast figures from the
// reservation table. It only reads; every figure is recomputed per request.
type ReportService struct {
	DB *gorm.DB

	// NightlyRate prices every room night until rooms carry their own rates.
	NightlyRate float64
}

func NewReportService(db *gorm.DB) *ReportService {
	rate := defaultNightlyRate
	if v := os.Getenv("NIGHTLY_RATE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rate = parsed
		}
	}
	return &ReportService{DB: db, NightlyRate: rate}
}

// DailyStat is one calendar day's slice of an occupancy or forecast report.
type DailyStat struct {
	Date          string  `json:"date"`
	OccupiedRooms int     `json:"occupied_rooms"`
	TotalRooms    int     `json:"total_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyReport struct {
	PropertyID         uint        `json:"property_id"`
	StartDate          string      `json:"start_date"`
	EndDate            string      `json:"end_date"`
	TotalRoomNights    int         `json:"total_room_nights"`
	OccupiedRoomNights int         `json:"occupied_room_nights"`
	OccupancyRate      float64     `json:"occupancy_rate"`
	HasRooms           bool        `json:"has_rooms"`
	PerDay             []DailyStat `json:"per_day"`
}

type RevenueDay struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
}

type RevenueReport struct {
	PropertyID   uint         `json:"property_id"`
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	TotalRevenue float64      `json:"total_revenue"`
	NightlyRate  float64      `json:"nightly_rate"`
	PerDay       []RevenueDay `json:"per_day"`
}

type ForecastDay struct {
	Date            string  `json:"date"`
	OccupiedRooms   int     `json:"occupied_rooms"`
	ExpectedRevenue float64 `json:"expected_revenue"`
	OccupancyRate   float64 `json:"occupancy_rate"`
}

type ForecastReport struct {
	PropertyID      uint          `json:"property_id"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	ExpectedRevenue float64       `json:"expected_revenue"`
	Confidence      float64       `json:"confidence"`
	PerDay          []ForecastDay `json:"per_day"`
}

type SummaryDay struct {
	Date          string  `json:"date"`
	OccupiedRooms int     `json:"occupied_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
	Revenue       float64 `json:"revenue"`
}

// SummaryReport combines the occupancy and revenue views over one range.
type SummaryReport struct {
	PropertyID         uint         `json:"property_id"`
	StartDate          string       `json:"start_date"`
	EndDate            string       `json:"end_date"`
	TotalRooms         int          `json:"total_rooms"`
	TotalRoomNights    int          `json:"total_room_nights"`
	OccupiedRoomNights int          `json:"occupied_room_nights"`
	OccupancyRate      float64      `json:"occupancy_rate"`
	TotalRevenue       float64      `json:"total_revenue"`
	NightlyRate        float64      `json:"nightly_rate"`
	PerDay             []SummaryDay `json:"per_day"`
}

// DailyReport is the front-desk view of a single day.
type DailyReport struct {
	PropertyID uint                 `json:"property_id"`
	Date       string               `json:"date"`
	CheckIns   []models.Reservation `json:"check_ins"`
	CheckOuts  []models.Reservation `json:"check_outs"`
	Staying    []models.Reservation `json:"staying"`
}

// ComputeOccupancy reports occupied versus total room-nights for the property
// over [start, end). A cancelled reservation contributes nothing. The rate is
// in [0, 1]; a property with no rooms reports zero with HasRooms false
// instead of dividing by zero.
func (s *ReportService) ComputeOccupancy(ctx context.Context, propertyID uint, start, end time.Time) (OccupancyReport, error) {
	start, end, rooms, reservations, err := s.loadRange(ctx, propertyID, start, end)
	if err != nil {
		return OccupancyReport{}, err
	}

	nights := int(end.Sub(start).Hours() / 24)
	report := OccupancyReport{
		PropertyID:      propertyID,
		StartDate:       start.Format("2006-01-02"),
		EndDate:         end.Format("2006-01-02"),
		TotalRoomNights: len(rooms) * nights,
		HasRooms:        len(rooms) > 0,
		PerDay:          make([]DailyStat, 0, nights),
	}

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		occupied := occupiedRooms(reservations, day)
		report.OccupiedRoomNights += occupied

		stat := DailyStat{
			Date:          day.Format("2006-01-02"),
			OccupiedRooms: occupied,
			TotalRooms:    len(rooms),
		}
		if len(rooms) > 0 {
			stat.OccupancyRate = float64(occupied) / float64(len(rooms))
		}
		report.PerDay = append(report.PerDay, stat)
	}

	if report.TotalRoomNights > 0 {
		report.OccupancyRate = float64(report.OccupiedRoomNights) / float64(report.TotalRoomNights)
	}
	return report, nil
}

// ComputeRevenue prices each occupied room-night inside [start, end) at the
// flat nightly rate. Reservations extending beyond the range are clipped; only
// the nights inside the range count.
func (s *ReportService) ComputeRevenue(ctx context.Context, propertyID uint, start, end time.Time) (RevenueReport, error) {
	start, end, _, reservations, err := s.loadRange(ctx, propertyID, start, end)
	if err != nil {
		return RevenueReport{}, err
	}

	report := RevenueReport{
		PropertyID:  propertyID,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		NightlyRate: s.NightlyRate,
		PerDay:      []RevenueDay{},
	}

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		occupied := occupiedRooms(reservations, day)
		revenue := float64(occupied) * s.NightlyRate
		report.TotalRevenue += revenue
		report.PerDay = append(report.PerDay, RevenueDay{
			Date:     day.Format("2006-01-02"),
			Revenue:  revenue,
			Bookings: occupied,
		})
	}
	return report, nil
}

// ComputeForecast projects revenue over a future range from the reservations
// already on the books.
func (s *ReportService) ComputeForecast(ctx context.Context, propertyID uint, start, end time.Time) (ForecastReport, error) {
	start, end, rooms, reservations, err := s.loadRange(ctx, propertyID, start, end)
	if err != nil {
		return ForecastReport{}, err
	}

	report := ForecastReport{
		PropertyID: propertyID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Confidence: forecastConfidence,
		PerDay:     []ForecastDay{},
	}

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		occupied := occupiedRooms(reservations, day)
		revenue := float64(occupied) * s.NightlyRate
		report.ExpectedRevenue += revenue

		entry := ForecastDay{
			Date:            day.Format("2006-01-02"),
			OccupiedRooms:   occupied,
			ExpectedRevenue: revenue,
		}
		if len(rooms) > 0 {
			entry.OccupancyRate = float64(occupied) / float64(len(rooms))
		}
		report.PerDay = append(report.PerDay, entry)
	}
	return report, nil
}

// ComputeSummary rolls occupancy and revenue into one report so dashboards
// need a single call per property.
func (s *ReportService) ComputeSummary(ctx context.Context, propertyID uint, start, end time.Time) (SummaryReport, error) {
	start, end, rooms, reservations, err := s.loadRange(ctx, propertyID, start, end)
	if err != nil {
		return SummaryReport{}, err
	}

	nights := int(end.Sub(start).Hours() / 24)
	report := SummaryReport{
		PropertyID:      propertyID,
		StartDate:       start.Format("2006-01-02"),
		EndDate:         end.Format("2006-01-02"),
		TotalRooms:      len(rooms),
		TotalRoomNights: len(rooms) * nights,
		NightlyRate:     s.NightlyRate,
		PerDay:          make([]SummaryDay, 0, nights),
	}

	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		occupied := occupiedRooms(reservations, day)
		revenue := float64(occupied) * s.NightlyRate
		report.OccupiedRoomNights += occupied
		report.TotalRevenue += revenue

		entry := SummaryDay{
			Date:          day.Format("2006-01-02"),
			OccupiedRooms: occupied,
			Revenue:       revenue,
		}
		if len(rooms) > 0 {
			entry.OccupancyRate = float64(occupied) / float64(len(rooms))
		}
		report.PerDay = append(report.PerDay, entry)
	}

	if report.TotalRoomNights > 0 {
		report.OccupancyRate = float64(report.OccupiedRoomNights) / float64(report.TotalRoomNights)
	}
	return report, nil
}

// ComputeDaily lists the check-ins, check-outs and stay-overs for one day.
func (s *ReportService) ComputeDaily(ctx context.Context, propertyID uint, date time.Time) (DailyReport, error) {
	day := atMidnightUTC(date)
	next := day.AddDate(0, 0, 1)

	db := s.DB.WithContext(ctx)

	var property models.Property
	if err := db.Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DailyReport{}, ErrPropertyNotFound
		}
		return DailyReport{}, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	reservations, err := s.propertyReservationsIn(db, propertyID, day, next)
	if err != nil {
		return DailyReport{}, err
	}

	report := DailyReport{
		PropertyID: propertyID,
		Date:       day.Format("2006-01-02"),
		CheckIns:   []models.Reservation{},
		CheckOuts:  []models.Reservation{},
		Staying:    []models.Reservation{},
	}

	for _, r := range reservations {
		switch {
		case r.StartDate.Equal(day):
			report.CheckIns = append(report.CheckIns, r)
		case r.EndDate.Equal(next):
			report.CheckOuts = append(report.CheckOuts, r)
		default:
			report.Staying = append(report.Staying, r)
		}
	}
	return report, nil
}

// loadRange validates the range, resolves the property's rooms and fetches
// every non-cancelled reservation intersecting [start, end). All three report
// flavors start here.
func (s *ReportService) loadRange(ctx context.Context, propertyID uint, start, end time.Time) (time.Time, time.Time, []models.Room, []models.Reservation, error) {
	start = atMidnightUTC(start)
	end = atMidnightUTC(end)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, nil, nil, ErrInvalidRange
	}

	db := s.DB.WithContext(ctx)

	var property models.Property
	if err := db.Select("id").First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, time.Time{}, nil, nil, ErrPropertyNotFound
		}
		return time.Time{}, time.Time{}, nil, nil, fmt.Errorf("failed to load property %d: %w", propertyID, err)
	}

	rooms, err := roomsForProperty(db, propertyID)
	if err != nil {
		return time.Time{}, time.Time{}, nil, nil, err
	}

	reservations, err := s.propertyReservationsIn(db, propertyID, start, end)
	if err != nil {
		return time.Time{}, time.Time{}, nil, nil, err
	}
	return start, end, rooms, reservations, nil
}

func (s *ReportService) propertyReservationsIn(db *gorm.DB, propertyID uint, start, end time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := db.
		Preload("Guest").
		Preload("Room").
		Joins("JOIN rooms ON rooms.id = reservations.room_id").
		Joins("JOIN buildings ON buildings.id = rooms.building_id").
		Where("buildings.property_id = ? AND reservations.status <> ? AND reservations.start_date < ? AND reservations.end_date > ?",
			propertyID, models.ReservationCancelled, end, start).
		Order("reservations.start_date ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for property %d: %w", propertyID, err)
	}
	return reservations, nil
}

// occupiedRooms counts distinct rooms occupied on the night starting at day.
func occupiedRooms(reservations []models.Reservation, day time.Time) int {
	next := day.AddDate(0, 0, 1)
	seen := map[uint]struct{}{}
	for _, r := range reservations {
		if r.Overlaps(day, next) {
			seen[r.RoomID] = struct{}{}
		}
	}
	return len(seen)
}
