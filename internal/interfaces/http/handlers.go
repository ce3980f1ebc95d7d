package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/application/service"
	"github.com/garyjia/print-order-tracker/internal/application/workflow"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	orders        service.OrderService
	users         service.UserService
	notifications service.NotificationService
	health        HealthChecker
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, health HealthChecker, logger Logger) *Handlers {
	return &Handlers{
		orders:        services.Orders,
		users:         services.Users,
		notifications: services.Notifications,
		health:        health,
		logger:        logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.health != nil {
		report := h.health.Health(c.Request.Context())
		resp.Components = report.Components
		if !report.Overall {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{Success: status == http.StatusOK, Data: resp})
}

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), actor(c), req.toDraft())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	filter, err := bindOrderFilter(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	orders, err := h.orders.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	respond(c, http.StatusOK, orders)
}

// ExportOrders handles GET /api/v1/orders/export. It takes the same filters as ListOrders.
func (h *Handlers) ExportOrders(c *gin.Context) {
	filter, err := bindOrderFilter(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.orders.Export(c.Request.Context(), actor(c), filter, &buf); err != nil {
		writeError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// applyAction binds T from the body and runs it against the order in the path
func applyAction[T actionRequest](h *Handlers) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		order, err := h.orders.Apply(c.Request.Context(), actor(c), c.Param("id"), req.toAction())
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		respond(c, http.StatusOK, order)
	}
}

// EditUpdate handles PATCH /api/v1/orders/:id/updates/:updateId
func (h *Handlers) EditUpdate(c *gin.Context) {
	var req editUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	patch := workflow.UpdatePatch{Status: req.Status, Remarks: req.Remarks, EstimatedTime: req.EstimatedTime}
	order, err := h.orders.EditUpdate(c.Request.Context(), actor(c), c.Param("id"), c.Param("updateId"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// UndoUpdate handles DELETE /api/v1/orders/:id/updates/:updateId
func (h *Handlers) UndoUpdate(c *gin.Context) {
	order, err := h.orders.UndoUpdate(c.Request.Context(), actor(c), c.Param("id"), c.Param("updateId"))
	if err != nil {
		var missing *domainwf.NotFoundError
		if errors.As(err, &missing) && missing.Resource == "status update" {
			c.JSON(http.StatusNotFound, Response{Error: "status update already undone or missing"})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit, err := queryLimit(c, 0)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items, err := h.notifications.ListForDepartment(c.Request.Context(), actor(c), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []*entity.Notification{}
	}
	respond(c, http.StatusOK, items)
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindOrderFilter(c *gin.Context) (port.OrderFilter, error) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return port.OrderFilter{}, domainwf.NewValidationError("query", err.Error())
	}

	filter := port.OrderFilter{
		Department:      entity.Department(q.Department),
		Status:          entity.OrderStatus(q.Status),
		PaymentStatus:   entity.PaymentStatus(q.PaymentStatus),
		PendingApproval: q.PendingApproval,
		Limit:           q.Limit,
	}
	if filter.Department != "" && !filter.Department.IsValid() {
		return filter, domainwf.NewValidationError("department", fmt.Sprintf("unknown department %q", q.Department))
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return filter, domainwf.NewValidationError("status", fmt.Sprintf("unknown status %q", q.Status))
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
		return filter, domainwf.NewValidationError("payment_status", fmt.Sprintf("unknown payment status %q", q.PaymentStatus))
	}

	switch {
	case filter.Limit < 0:
		return filter, domainwf.NewValidationError("limit", "must not be negative")
	case filter.Limit == 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	return filter, nil
}

func queryLimit(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domainwf.NewValidationError("limit", "must be a non-negative integer")
	}
	return n, nil
}

// bindOptionalJSON accepts an empty body for actions whose fields are all optional
func bindOptionalJSON(c *gin.Context, out interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
