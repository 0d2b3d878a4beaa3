package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	service services.EnrollmentService
	reports services.ReportService
}

func NewEnrollmentHandler(service services.EnrollmentService, reports services.ReportService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		reports:     reports,
	}
}

// ===== ENROLLMENT ENDPOINTS =====

// Enroll registers a student on a course
// @Summary Enroll a student
// @Description Enroll a student on a course, enforcing uniqueness and capacity
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.EnrollRequest true "Enrollment payload"
// @Success 201 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse "Student or course not found"
// @Failure 409 {object} ErrorResponse "Already enrolled or course full"
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	h.LogRequest(c, "Enrolling student")

	var req services.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// Drop drops an active enrollment
// @Summary Drop an enrollment
// @Description Transition an Active enrollment to Dropped
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse "Enrollment not found"
// @Failure 409 {object} ErrorResponse "Enrollment is not Active"
// @Router /enrollments/{id}/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	h.LogRequest(c, "Dropping enrollment")

	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.service.Drop(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Update updates an enrollment's status and/or grade
// @Summary Update an enrollment
// @Description Update status and/or grade; absent fields are unchanged
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body services.UpdateEnrollmentRequest true "Update payload"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse "Grade out of range"
// @Failure 404 {object} ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	h.LogRequest(c, "Updating enrollment")

	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "invalid request body",
		})
		return
	}

	enrollment, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Get returns one enrollment
// @Summary Get an enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// List returns enrollments matching the query filters
// @Summary List enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status: Active, Dropped, Completed"
// @Param student_id query int false "Filter by student"
// @Param course_id query int false "Filter by course"
// @Success 200 {object} services.EnrollmentListResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filters := enrollmentFiltersFromQuery(c)

	resp, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListByStudent returns a student's enrollments
// @Summary List a student's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByStudent(c.Request.Context(), id, enrollmentFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListByCourse returns a course's enrollments
// @Summary List a course's enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByCourse(c.Request.Context(), id, enrollmentFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Recent returns enrollments created in the last N days
// @Summary List recent enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (default: 7)"
// @Success 200 {object} services.EnrollmentListResponse
// @Router /enrollments/recent [get]
func (h *EnrollmentHandler) Recent(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}

	resp, err := h.service.GetRecent(c.Request.Context(), days, enrollmentFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stats returns aggregate enrollment counts
// @Summary Enrollment statistics
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repositories.EnrollmentStats
// @Router /enrollments/stats [get]
func (h *EnrollmentHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Trends returns daily enrollment counts for a date range
// @Summary Enrollment trends
// @Description Bucket enrollments by calendar day over an inclusive date range
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "Range start (YYYY-MM-DD)"
// @Param end_date query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} services.EnrollmentTrendsResponse
// @Failure 400 {object} ErrorResponse "Malformed dates"
// @Router /enrollments/trends [get]
func (h *EnrollmentHandler) Trends(c *gin.Context) {
	start, end, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	trends, err := h.service.Trends(c.Request.Context(), start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}

// Export streams the enrollment report workbook
// @Summary Export enrollments
// @Description Download the filtered enrollments as an xlsx workbook
// @Tags enrollments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	h.LogRequest(c, "Exporting enrollments")

	data, err := h.reports.ExportEnrollments(c.Request.Context(), enrollmentFiltersFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("enrollments-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== QUERY HELPERS =====

func (h *EnrollmentHandler) parseDateRange(c *gin.Context) (start, end time.Time, ok bool) {
	var err error
	start, err = time.ParseInLocation("2006-01-02", c.Query("start_date"), time.Local)
	if err == nil {
		end, err = time.ParseInLocation("2006-01-02", c.Query("end_date"), time.Local)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "start_date and end_date must be YYYY-MM-DD",
		})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func enrollmentFiltersFromQuery(c *gin.Context) repositories.EnrollmentFilters {
	limit, offset := parsePagination(c)
	filters := repositories.EnrollmentFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.DefaultQuery("sort_by", "enrolled_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.EnrollmentStatus(raw)
		if status.Valid() {
			filters.Status = &status
		}
	}
	if raw := c.Query("student_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			sid := uint(id)
			filters.StudentID = &sid
		}
	}
	if raw := c.Query("course_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			cid := uint(id)
			filters.CourseID = &cid
		}
	}
	return filters
}
