package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

// parseID reads a numeric path parameter; zero means the parameter was
// missing or malformed and the 400 has already been written.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseDateRange reads start/end query parameters in YYYY-MM-DD form.
func parseDateRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	start, err := parseDate(ctx.Query("start"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid or missing start date, want YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(ctx.Query("end"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid or missing end date, want YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// respondServiceError maps service errors onto HTTP statuses. Conflicts get
// a 409 with the conflicting reservations in the payload.
func respondServiceError(ctx *gin.Context, err error) {
	var conflict *services.ConflictError
	switch {
	case errors.As(err, &conflict):
		ctx.JSON(http.StatusConflict, gin.H{
			"success":   false,
			"error":     "room_not_available",
			"conflicts": conflict.Conflicts,
		})
	case services.IsNotFound(err):
		utils.JSONError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDuplicateRoomNumber),
		errors.Is(err, services.ErrDuplicateGuest):
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		utils.JSONError(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.JSONError(ctx, http.StatusGatewayTimeout, "request timed out")
	default:
		utils.JSONError(ctx, http.StatusInternalServerError, "internal error")
	}
}
