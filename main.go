package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scottmsilver/ressy/config"
	"github.com/scottmsilver/ressy/controllers"
	"github.com/scottmsilver/ressy/routes"
	"github.com/scottmsilver/ressy/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	db := config.DB
	log.Println("database connection established, migrations applied")

	availabilityService := services.NewAvailabilityService(db)
	reservationService := services.NewReservationService(db)
	propertyService := services.NewPropertyService(db)
	guestService := services.NewGuestService(db)
	reportService := services.NewReportService(db)

	propertyController := controllers.NewPropertyController(propertyService)
	guestController := controllers.NewGuestController(guestService)
	reservationController := controllers.NewReservationController(reservationService, availabilityService)
	reportController := controllers.NewReportController(reportService)

	router := routes.SetupRouter(db, propertyController, guestController, reservationController, reportController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
