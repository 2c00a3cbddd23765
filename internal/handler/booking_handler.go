package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addisrides/service-rental/internal/application"
	"github.com/addisrides/service-rental/pkg/auth"
	"github.com/addisrides/service-rental/pkg/middleware"
	"github.com/addisrides/service-rental/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	r.GET("/fleets/check-availability/:id", h.CheckAvailability)

	fleets := r.Group("/fleets")
	fleets.Use(authMW)
	{
		fleets.POST("/book-fleet/:id", h.CreateBooking)
		fleets.POST("/confirm-booking/:id", h.ConfirmBooking)
		fleets.PUT("/cancel-booking/:id", h.CancelBooking)
		fleets.DELETE("/cancel-booking/:id", h.CancelBooking)
		fleets.GET("/bookingId/:fleetId", h.GetLatestBookingID)
		fleets.GET("/bookingHistory", h.GetBookingHistory)
		fleets.GET("/getBookingHistory/:id", h.GetBookingWithPayment)
	}
}

// CheckAvailability handles GET /fleets/check-availability/:id. The range
// comes from pickup_date and return_date query parameters in YYYY-MM-DD form.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	const layout = "2006-01-02"
	pickup, err := time.Parse(layout, c.Query("pickup_date"))
	if err != nil {
		response.BadRequest(c, "pickup_date must be in YYYY-MM-DD format")
		return
	}
	returnDate, err := time.Parse(layout, c.Query("return_date"))
	if err != nil {
		response.BadRequest(c, "return_date must be in YYYY-MM-DD format")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), vehicleID, pickup, returnDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateBooking handles POST /fleets/book-fleet/:id. The :id is the vehicle
// to book; the date range and pickup location come from the body.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, vehicleID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ConfirmBooking handles POST /fleets/confirm-booking/:id. The renter
// contact details are required in the body.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles PUT and DELETE /fleets/cancel-booking/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	role, _ := middleware.GetUserRole(c)
	isAdmin := role == auth.RoleAdmin

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, isAdmin, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetLatestBookingID handles GET /fleets/bookingId/:fleetId. It resolves the
// caller's most recent booking for the vehicle, used to reference the booking
// when initializing payment.
func (h *BookingHandler) GetLatestBookingID(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	vehicleID, err := uuid.Parse(c.Param("fleetId"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	bookingID, err := h.service.LatestBookingID(c.Request.Context(), userID, vehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking_id": bookingID})
}

// GetBookingHistory handles GET /fleets/bookingHistory.
func (h *BookingHandler) GetBookingHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetBookingHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBookingWithPayment handles GET /fleets/getBookingHistory/:id.
func (h *BookingHandler) GetBookingWithPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingWithPayment(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
