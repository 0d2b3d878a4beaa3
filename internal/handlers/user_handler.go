package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Get returns one user
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// List returns users matching the query filters
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param role query string false "Filter by role: Student, Lecturer, Admin"
// @Success 200 {object} services.UserListResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	filters := repositories.UserFilters{
		Query:  c.Query("query"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		if role.Valid() {
			filters.Role = &role
		}
	}

	resp, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AuditTrail returns a user's audit log entries
// @Summary Audit trail for a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.AuditTrailResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/audit [get]
func (h *UserHandler) AuditTrail(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	resp, err := h.service.AuditTrail(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RoleCounts returns the number of users per role
// @Summary User counts by role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Router /users/role-counts [get]
func (h *UserHandler) RoleCounts(c *gin.Context) {
	counts, err := h.service.RoleCounts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
