package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

type ReportController struct {
	ReportSvc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{ReportSvc: svc}
}

func (c *ReportController) Occupancy(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	report, err := c.ReportSvc.ComputeOccupancy(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, report)
}

func (c *ReportController) Revenue(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	report, err := c.ReportSvc.ComputeRevenue(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, report)
}

func (c *ReportController) Forecast(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	report, err := c.ReportSvc.ComputeForecast(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, report)
}

func (c *ReportController) Summary(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	start, end, ok := parseDateRange(ctx)
	if !ok {
		return
	}

	report, err := c.ReportSvc.ComputeSummary(ctx.Request.Context(), id, start, end)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, report)
}

func (c *ReportController) Daily(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	date, err := parseDate(ctx.Query("date"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid or missing date, want YYYY-MM-DD")
		return
	}

	report, err := c.ReportSvc.ComputeDaily(ctx.Request.Context(), id, date)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, report)
}
