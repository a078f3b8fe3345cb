package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scottmsilver/ressy/services"
	"github.com/scottmsilver/ressy/utils"
)

type PropertyController struct {
	PropertySvc *services.PropertyService
}

func NewPropertyController(svc *services.PropertyService) *PropertyController {
	return &PropertyController{PropertySvc: svc}
}

type createPropertyRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

func (c *PropertyController) CreateProperty(ctx *gin.Context) {
	var req createPropertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	property, err := c.PropertySvc.CreateProperty(ctx.Request.Context(), req.Name, req.Address)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, property)
}

func (c *PropertyController) GetProperty(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	property, err := c.PropertySvc.GetProperty(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, property)
}

func (c *PropertyController) ListProperties(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))
	properties, err := c.PropertySvc.ListProperties(ctx.Request.Context(), ctx.Query("name"), limit, offset)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, properties)
}

func (c *PropertyController) DeleteProperty(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PropertySvc.DeleteProperty(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type addBuildingRequest struct {
	Name string `json:"name" binding:"required"`
}

func (c *PropertyController) AddBuilding(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req addBuildingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	building, err := c.PropertySvc.AddBuilding(ctx.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, building)
}

func (c *PropertyController) RenameBuilding(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req addBuildingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	building, err := c.PropertySvc.RenameBuilding(ctx.Request.Context(), id, req.Name)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, building)
}

func (c *PropertyController) DeleteBuilding(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PropertySvc.DeleteBuilding(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type addRoomRequest struct {
	Name       string `json:"name"`
	RoomNumber string `json:"room_number" binding:"required"`
}

func (c *PropertyController) AddRoom(ctx *gin.Context) {
	buildingID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req addRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	room, err := c.PropertySvc.AddRoom(ctx.Request.Context(), services.AddRoomInput{
		BuildingID: buildingID,
		Name:       req.Name,
		RoomNumber: req.RoomNumber,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, room)
}

func (c *PropertyController) GetRoom(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	room, err := c.PropertySvc.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	utils.JSONSuccess(ctx, http.StatusOK, gin.H{
		"room":     room,
		"capacity": room.Capacity(),
	})
}

func (c *PropertyController) DeleteRoom(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PropertySvc.DeleteRoom(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type updateAmenitiesRequest struct {
	Amenities []string `json:"amenities"`
}

func (c *PropertyController) UpdateRoomAmenities(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req updateAmenitiesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	room, err := c.PropertySvc.UpdateRoomAmenities(ctx.Request.Context(), id, req.Amenities)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, room)
}

type addBedRequest struct {
	BedType    string `json:"bed_type" binding:"required"`
	BedSubType string `json:"bed_subtype"`
}

func (c *PropertyController) AddBed(ctx *gin.Context) {
	roomID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req addBedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	bed, err := c.PropertySvc.AddBed(ctx.Request.Context(), roomID, req.BedType, req.BedSubType)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, bed)
}

func (c *PropertyController) RemoveBed(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.PropertySvc.RemoveBed(ctx.Request.Context(), id); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

type generatePropertyRequest struct {
	Name      string `json:"name"`
	Buildings int    `json:"buildings"`
	Rooms     int    `json:"rooms"`
	Seed      int64  `json:"seed"`
}

func (c *PropertyController) GenerateRandomProperty(ctx *gin.Context) {
	var req generatePropertyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	property, err := c.PropertySvc.GenerateRandomProperty(ctx.Request.Context(), services.GenerateRandomInput{
		Name:      req.Name,
		Buildings: req.Buildings,
		Rooms:     req.Rooms,
		Seed:      req.Seed,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, property)
}
