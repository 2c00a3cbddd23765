package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addisrides/service-rental/internal/application"
	"github.com/addisrides/service-rental/pkg/auth"
	"github.com/addisrides/service-rental/pkg/middleware"
	"github.com/addisrides/service-rental/pkg/response"
)

// FleetHandler handles HTTP requests for the vehicle catalog.
type FleetHandler struct {
	service *application.FleetService
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(service *application.FleetService) *FleetHandler {
	return &FleetHandler{service: service}
}

// RegisterRoutes registers vehicle catalog routes on the given router group.
// Listing and detail are public; everything else is admin-only.
func (h *FleetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	fleets := r.Group("/fleets")
	{
		fleets.GET("", h.ListVehicles)
		fleets.GET("/:id", h.GetVehicle)

		fleets.POST("", authMW, adminMW, h.CreateVehicle)
		fleets.PUT("/update/:id", authMW, adminMW, h.UpdateVehicle)
		fleets.PUT("/availability/:id", authMW, adminMW, h.SetAvailability)
		fleets.DELETE("/delete/:id", authMW, adminMW, h.DeleteVehicle)
	}
}

// ListVehicles handles GET /fleets, returning vehicles open for booking.
func (h *FleetHandler) ListVehicles(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListAvailableVehicles(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetVehicle handles GET /fleets/:id.
func (h *FleetHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	result, err := h.service.GetVehicle(c.Request.Context(), vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateVehicle handles POST /fleets.
func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateVehicle handles PUT /fleets/update/:id.
func (h *FleetHandler) UpdateVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var req application.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateVehicle(c.Request.Context(), vehicleID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PUT /fleets/availability/:id.
func (h *FleetHandler) SetAvailability(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var body struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetVehicleAvailability(c.Request.Context(), vehicleID, *body.Available)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteVehicle handles DELETE /fleets/delete/:id.
func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	if err := h.service.DeleteVehicle(c.Request.Context(), vehicleID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
