package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/addisrides/service-rental/internal/application"
	"github.com/addisrides/service-rental/pkg/auth"
	"github.com/addisrides/service-rental/pkg/middleware"
	"github.com/addisrides/service-rental/pkg/response"
)

// PaymentHandler handles the Chapa checkout endpoints.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes on the given router group. The
// callback is unauthenticated since it is pushed by the gateway.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	chappa := r.Group("/chappa")
	{
		chappa.POST("/initialize/:bookingId", authMW, h.InitializePayment)
		chappa.POST("/callback", h.Callback)
		chappa.GET("/callback", h.Callback)
		chappa.GET("/verify/:tx_ref", authMW, h.VerifyPayment)
	}
}

// InitializePayment handles POST /chappa/initialize/:bookingId.
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.InitializePayment(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Callback handles the gateway's server-to-server notification on
// /chappa/callback. The transaction reference may arrive as a query
// parameter or in a JSON body; the status is always re-verified against
// the gateway rather than trusted from the payload.
func (h *PaymentHandler) Callback(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		var body struct {
			TxRef string `json:"tx_ref"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			txRef = body.TxRef
		}
	}

	if err := h.service.HandleCallback(c.Request.Context(), txRef); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// VerifyPayment handles GET /chappa/verify/:tx_ref.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	result, err := h.service.VerifyPayment(c.Request.Context(), c.Param("tx_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
