package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addisrides/service-rental/internal/application"
	"github.com/addisrides/service-rental/pkg/auth"
	"github.com/addisrides/service-rental/pkg/middleware"
	"github.com/addisrides/service-rental/pkg/response"
)

// AdminHandler handles admin-only booking and fleet oversight endpoints.
type AdminHandler struct {
	bookings *application.BookingService
	fleet    *application.FleetService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, fleet *application.FleetService) *AdminHandler {
	return &AdminHandler{bookings: bookings, fleet: fleet}
}

// RegisterRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	fleets := r.Group("/fleets")
	fleets.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		fleets.GET("/getBookingsInfo", h.ListBookings)
		fleets.GET("/getFleetsInfo", h.ListVehicles)
		fleets.DELETE("/deleteBooking/:id", h.DeleteBooking)
	}
}

// ListBookings handles GET /fleets/getBookingsInfo. Returns every booking
// with the renter and vehicle details joined.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// ListVehicles handles GET /fleets/getFleetsInfo. Returns the whole fleet,
// including vehicles currently marked unavailable.
func (h *AdminHandler) ListVehicles(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.fleet.ListAllVehicles(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// DeleteBooking handles DELETE /fleets/deleteBooking/:id. Hard delete,
// regardless of booking status.
func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	if err := h.bookings.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
