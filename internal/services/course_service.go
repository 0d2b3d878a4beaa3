package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}
	if err := checkCourseDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	if req.LecturerID != nil {
		if _, err := s.repo.Lecturer().GetByID(ctx, *req.LecturerID); err != nil {
			return nil, wrapStoreError(err, "lecturer", *req.LecturerID)
		}
	}

	// Fast path only; the unique index catches races.
	if exists, err := s.repo.Course().ExistsByCode(ctx, req.Code); err == nil && exists {
		return nil, NewServiceError(ErrCodeValidation, "course code already exists")
	}

	course := &models.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Credits:     req.Credits,
		LecturerID:  req.LecturerID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Capacity:    req.Capacity,
	}
	if len(req.Metadata) > 0 {
		course.Metadata = datatypes.JSON(req.Metadata)
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewServiceError(ErrCodeValidation, "course code already exists")
		}
		return nil, NewUnavailableError(err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "code", course.Code)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "course", id)
	}
	return course, nil
}

func (s *courseService) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.Course().GetByCode(ctx, code)
	if err != nil {
		return nil, wrapStoreError(err, "course", 0)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "course", id)
	}

	if req.Title != nil {
		course.Title = req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Credits != nil {
		course.Credits = req.Credits
	}
	if req.LecturerID != nil {
		if _, err := s.repo.Lecturer().GetByID(ctx, *req.LecturerID); err != nil {
			return nil, wrapStoreError(err, "lecturer", *req.LecturerID)
		}
		course.LecturerID = req.LecturerID
	}
	if req.StartDate != nil {
		course.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		course.EndDate = req.EndDate
	}
	if req.Capacity != nil {
		course.Capacity = req.Capacity
	}
	if err := checkCourseDates(course.StartDate, course.EndDate); err != nil {
		return nil, err
	}
	course.UpdatedAt = s.now()

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, NewUnavailableError(err)
	}

	s.logger.Info("Course updated", "course_id", course.ID)
	return course, nil
}

// Delete refuses to remove a course that still has Active enrollments.
func (s *courseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Course().GetByID(ctx, id); err != nil {
		return wrapStoreError(err, "course", id)
	}

	active, err := s.repo.Enrollment().CountActiveByCourse(ctx, id)
	if err != nil {
		return NewUnavailableError(err)
	}
	if active > 0 {
		return NewInvalidTransitionError("cannot delete a course with active enrollments")
	}

	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return wrapStoreError(err, "course", id)
	}

	s.logger.Info("Course deleted", "course_id", id)
	return nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    filters.Offset/limit + 1,
		Size:    limit,
	}, nil
}

func (s *courseService) GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "course", id)
	}

	active, err := s.repo.Enrollment().CountActiveByCourse(ctx, id)
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	courseID := id
	_, total, err := s.repo.Enrollment().List(ctx, repositories.EnrollmentFilters{CourseID: &courseID, Limit: 1})
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	stats := &repositories.CourseStats{
		CourseID:    id,
		ActiveCount: active,
		TotalCount:  total,
		Capacity:    course.Capacity,
	}
	if course.Capacity != nil {
		remaining := *course.Capacity - int(active)
		if remaining < 0 {
			remaining = 0
		}
		stats.SeatsRemaining = &remaining
	}
	return stats, nil
}

func checkCourseDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return NewValidationError("end_date must not be before start_date")
	}
	return nil
}
