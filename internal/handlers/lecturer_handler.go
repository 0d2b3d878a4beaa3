package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type LecturerHandler struct {
	BaseHandler
	service services.LecturerService
}

func NewLecturerHandler(service services.LecturerService, logger utils.Logger) *LecturerHandler {
	return &LecturerHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== LECTURER ENDPOINTS =====

// Create provisions a lecturer account
// @Summary Create a lecturer
// @Description Create a lecturer account with profile, for administrative use
// @Tags lecturers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateLecturerRequest true "Lecturer payload"
// @Success 201 {object} models.Lecturer
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /lecturers [post]
func (h *LecturerHandler) Create(c *gin.Context) {
	h.LogRequest(c, "Creating lecturer")

	var req services.CreateLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	lecturer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lecturer)
}

// Get returns one lecturer
// @Summary Get a lecturer
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecturer ID"
// @Success 200 {object} models.Lecturer
// @Failure 404 {object} ErrorResponse "Lecturer not found"
// @Router /lecturers/{id} [get]
func (h *LecturerHandler) Get(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	lecturer, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lecturer)
}

// List returns lecturers with pagination
// @Summary List lecturers
// @Tags lecturers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.LecturerListResponse
// @Router /lecturers [get]
func (h *LecturerHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)

	resp, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
