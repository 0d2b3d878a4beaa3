package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

// ErrorResponse is the JSON error body returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c.Request.Context(), h.logger).Debug(msg, "path", c.FullPath())
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, "path", c.FullPath(), "error", err)
}

// ===== ERROR HANDLING =====

// handleServiceError maps service error codes to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case services.ErrCodeNotFound:
		status = http.StatusNotFound
	case services.ErrCodeDuplicateEmail, services.ErrCodeAlreadyEnrolled,
		services.ErrCodeCapacityExceeded, services.ErrCodeInvalidTransition:
		status = http.StatusConflict
	case services.ErrCodeInvalidGrade, services.ErrCodeValidation:
		status = http.StatusBadRequest
	case services.ErrCodeInvalidCredentials, services.ErrCodeInvalidToken:
		status = http.StatusUnauthorized
	case services.ErrCodeUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusServiceUnavailable || status == http.StatusInternalServerError {
		h.LogError(c, err, "Service error")
	}

	c.JSON(status, ErrorResponse{
		Error:   string(svcErr.Code),
		Message: svcErr.Message,
	})
}

// ===== PARAM HELPERS =====

func (h *BaseHandler) parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid " + name + " parameter",
		})
		return 0, false
	}
	return uint(id), true
}

func parsePagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}
