package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/addisrides/service-rental/pkg/domain"
)

// Envelope is the standard response body for all endpoints.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginatedEnvelope extends Envelope with paging metadata.
type PaginatedEnvelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Status: "success", Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Status: "success", Data: data})
}

// Paginated writes a 200 with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Status: "success",
		Data:   items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Status: "fail", Message: message})
}

// Error maps a domain error onto the matching HTTP status. Validation and
// conflict messages are safe for direct display; upstream and internal
// failures return a generic message, with the detail left to server logs.
func Error(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
		conflict     *domain.ConflictError
		invalidState *domain.InvalidStateError
		forbidden    *domain.ForbiddenError
		unauthorized *domain.UnauthorizedError
		upstream     *domain.UpstreamError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, Envelope{Status: "fail", Message: notFound.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, Envelope{Status: "fail", Message: validation.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, Envelope{Status: "fail", Message: conflict.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, Envelope{Status: "fail", Message: invalidState.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, Envelope{Status: "fail", Message: forbidden.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, Envelope{Status: "fail", Message: unauthorized.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, Envelope{Status: "error", Message: "payment provider unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Status: "error", Message: "internal server error"})
	}
}
