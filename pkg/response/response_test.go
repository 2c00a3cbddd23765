package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addisrides/service-rental/pkg/domain"
)

func writeError(t *testing.T, err error) (int, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, err)

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.NewNotFoundError("Booking", "abc"), http.StatusNotFound},
		{"validation", domain.NewValidationError("pickup date is required"), http.StatusBadRequest},
		{"conflict", domain.NewConflictError("vehicle is already booked"), http.StatusConflict},
		{"invalid state", domain.NewInvalidStateError("cancelled", "confirmed"), http.StatusConflict},
		{"forbidden", domain.NewForbiddenError("not your booking"), http.StatusForbidden},
		{"upstream", domain.NewUpstreamError("chapa", errors.New("connection refused")), http.StatusBadGateway},
		{"wrapped upstream", fmt.Errorf("initializing payment: %w", domain.NewUpstreamError("chapa", errors.New("returned 503"))), http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := writeError(t, tc.err)
			assert.Equal(t, tc.status, code)
		})
	}

	t.Run("upstream detail is not exposed to the client", func(t *testing.T) {
		_, body := writeError(t, domain.NewUpstreamError("chapa", errors.New("secret-key rejected")))
		assert.Equal(t, "payment provider unavailable", body.Message)
		assert.NotContains(t, body.Message, "secret-key")
	})
}
