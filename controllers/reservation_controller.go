package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

type ReservationController struct {
	ReservationSvc  *services.ReservationService
	AvailabilitySvc *services.AvailabilityService
}

func NewReservationController(rs *services.ReservationService, as *services.AvailabilityService) *ReservationController {
	return &ReservationController{ReservationSvc: rs, AvailabilitySvc: as}
}

type createReservationRequest struct {
	GuestID         uint   `json:"guest_id" binding:"required"`
	RoomID          uint   `json:"room_id" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	NumGuests       int    `json:"num_guests"`
	SpecialRequests string `json:"special_requests"`
}

func (c *ReservationController) CreateReservation(ctx *gin.Context) {
	var req createReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid start_date, want YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid end_date, want YYYY-MM-DD")
		return
	}

	reservation, err := c.ReservationSvc.CreateReservation(ctx.Request.Context(), services.CreateReservationInput{
		GuestID:         req.GuestID,
		RoomID:          req.RoomID,
		StartDate:       start,
		EndDate:         end,
		NumGuests:       req.NumGuests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, reservation)
}

func (c *ReservationController) GetReservation(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	reservation, err := c.ReservationSvc.GetReservation(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, reservation)
}

func (c *ReservationController) CancelReservation(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ReservationSvc.CancelReservation(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"cancelled": id})
}

func (c *ReservationController) GuestHistory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	includeCancelled := ctx.Query("include_cancelled") == "true"
	reservations, err := c.ReservationSvc.GuestHistory(ctx.Request.Context(), id, includeCancelled)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, reservations)
}

func (c *ReservationController) PropertyReservations(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	result, err := c.ReservationSvc.PropertyReservations(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, result)
}

// CheckRoomAvailability is the advisory pre-check; creation re-verifies
// under the room lock so a 200 here never guarantees the booking.
func (c *ReservationController) CheckRoomAvailability(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	result, err := c.AvailabilitySvc.CheckAvailability(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, result)
}

func (c *ReservationController) CheckPropertyAvailability(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	result, err := c.AvailabilitySvc.CheckPropertyAvailability(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, result)
}
