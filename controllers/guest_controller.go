package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

type GuestController struct {
	GuestSvc *services.GuestService
}

func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{GuestSvc: svc}
}

type createGuestRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	AllowDuplicate bool   `json:"allow_duplicate"`
}

func (c *GuestController) CreateGuest(ctx *gin.Context) {
	var req createGuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	guest, err := c.GuestSvc.CreateGuest(ctx.Request.Context(), services.CreateGuestInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		AllowDuplicate: req.AllowDuplicate,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, guest)
}

func (c *GuestController) GetGuest(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	guest, err := c.GuestSvc.GetGuest(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guest)
}

func (c *GuestController) FindGuests(ctx *gin.Context) {
	guests, err := c.GuestSvc.FindGuests(
		ctx.Request.Context(),
		ctx.Query("name"),
		ctx.Query("email"),
		ctx.Query("phone"),
	)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guests)
}

type updatePreferencesRequest struct {
	Preferences map[string]interface{} `json:"preferences" binding:"required"`
}

func (c *GuestController) UpdatePreferences(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req updatePreferencesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	guest, err := c.GuestSvc.UpdatePreferences(ctx.Request.Context(), id, req.Preferences)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guest)
}

type addContactEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (c *GuestController) AddContactEmail(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req addContactEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	guest, err := c.GuestSvc.AddContactEmail(ctx.Request.Context(), id, req.Email)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guest)
}

type mergeGuestsRequest struct {
	DuplicateID uint `json:"duplicate_id" binding:"required"`
}

func (c *GuestController) MergeGuests(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req mergeGuestsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	guest, err := c.GuestSvc.MergeGuests(ctx.Request.Context(), id, req.DuplicateID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guest)
}

type createFamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (c *GuestController) CreateFamily(ctx *gin.Context) {
	var req createFamilyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	family, err := c.GuestSvc.CreateFamily(ctx.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, family)
}

type familyMemberRequest struct {
	GuestID uint `json:"guest_id" binding:"required"`
}

func (c *GuestController) AddFamilyMember(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req familyMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := c.GuestSvc.AddFamilyMember(ctx.Request.Context(), id, req.GuestID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"family_id": id, "guest_id": req.GuestID})
}

func (c *GuestController) SetPrimaryContact(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req familyMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := c.GuestSvc.SetPrimaryContact(ctx.Request.Context(), id, req.GuestID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"family_id": id, "primary_contact_id": req.GuestID})
}

func (c *GuestController) FamilyMembers(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	guests, err := c.GuestSvc.FamilyMembers(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, guests)
}
