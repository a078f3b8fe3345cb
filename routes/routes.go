package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/scottmsilver/ressy/controllers"
	"github.com/scottmsilver/ressy/middleware"
	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controller instances onto the HTTP surface. The db
// handle backs the health endpoint's store check.
func SetupRouter(
	db *gorm.DB,
	pc *controllers.PropertyController,
	gc *controllers.GuestController,
	rc *controllers.ReservationController,
	rpc *controllers.ReportController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			utils.JSONError(c, http.StatusServiceUnavailable, services.ErrStoreUnavailable.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		properties := api.Group("/properties")
		{
			properties.GET("", pc.ListProperties)
			properties.POST("", pc.CreateProperty)
			properties.POST("/generate", pc.GenerateRandomProperty)
			properties.GET("/:id", pc.GetProperty)
			properties.DELETE("/:id", pc.DeleteProperty)
			properties.POST("/:id/buildings", pc.AddBuilding)

			properties.GET("/:id/availability", rc.CheckPropertyAvailability)
			properties.GET("/:id/reservations", rc.PropertyReservations)

			properties.GET("/:id/reports/occupancy", rpc.Occupancy)
			properties.GET("/:id/reports/revenue", rpc.Revenue)
			properties.GET("/:id/reports/forecast", rpc.Forecast)
			properties.GET("/:id/reports/summary", rpc.Summary)
			properties.GET("/:id/reports/daily", rpc.Daily)
		}

		buildings := api.Group("/buildings")
		{
			buildings.PUT("/:id", pc.RenameBuilding)
			buildings.DELETE("/:id", pc.DeleteBuilding)
			buildings.POST("/:id/rooms", pc.AddRoom)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("/:id", pc.GetRoom)
			rooms.DELETE("/:id", pc.DeleteRoom)
			rooms.PUT("/:id/amenities", pc.UpdateRoomAmenities)
			rooms.POST("/:id/beds", pc.AddBed)
			rooms.GET("/:id/availability", rc.CheckRoomAvailability)
		}

		beds := api.Group("/beds")
		{
			beds.DELETE("/:id", pc.RemoveBed)
		}

		guests := api.Group("/guests")
		{
			guests.GET("", gc.FindGuests)
			guests.POST("", gc.CreateGuest)
			guests.GET("/:id", gc.GetGuest)
			guests.PUT("/:id/preferences", gc.UpdatePreferences)
			guests.POST("/:id/emails", gc.AddContactEmail)
			guests.POST("/:id/merge", gc.MergeGuests)
			guests.GET("/:id/reservations", rc.GuestHistory)
		}

		families := api.Group("/families")
		{
			families.POST("", gc.CreateFamily)
			families.GET("/:id/members", gc.FamilyMembers)
			families.POST("/:id/members", gc.AddFamilyMember)
			families.PUT("/:id/primary-contact", gc.SetPrimaryContact)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", rc.CreateReservation)
			reservations.GET("/:id", rc.GetReservation)
			reservations.POST("/:id/cancel", rc.CancelReservation)
		}
	}

	return r
}
