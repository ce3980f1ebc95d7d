package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// RuleDetails accompanies a 409 so clients can show the outstanding balance
type RuleDetails struct {
	Rule          string `json:"rule"`
	PaidAmount    string `json:"paid_amount"`
	PendingAmount string `json:"pending_amount"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}

// writeError maps domain errors to status codes. Anything unrecognised is logged and hidden.
func writeError(c *gin.Context, logger Logger, err error) {
	var violation *domainwf.BusinessRuleViolation

	switch {
	case errors.Is(err, port.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, Response{Error: "invalid or expired token"})
	case errors.Is(err, domainwf.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
	case errors.Is(err, domainwf.ErrUnauthorized):
		c.JSON(http.StatusForbidden, Response{Error: err.Error()})
	case errors.Is(err, domainwf.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
	case errors.As(err, &violation):
		c.JSON(http.StatusConflict, Response{
			Error: violation.Error(),
			Details: RuleDetails{
				Rule:          violation.Rule,
				PaidAmount:    violation.PaidAmount.StringFixed(2),
				PendingAmount: violation.PendingAmount.StringFixed(2),
			},
		})
	default:
		logger.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Error: "internal server error"})
	}
}
