package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/print-order-tracker/internal/application/service"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// Me handles GET /api/v1/users/me
func (h *Handlers) Me(c *gin.Context) {
	respond(c, http.StatusOK, actor(c))
}

// ListUsers handles GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []*entity.User{}
	}
	respond(c, http.StatusOK, users)
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor(c), service.NewUser{
		Name:       req.Name,
		Email:      req.Email,
		Department: entity.Department(req.Department),
		Role:       entity.Role(req.Role),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// UpdateUserRole handles PUT /api/v1/users/:id/role
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), actor(c), c.Param("id"),
		entity.Role(req.Role), entity.Department(req.Department))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, user)
}
