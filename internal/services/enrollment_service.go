package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

const dayLayout = "2006-01-02"

type enrollmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	cfg       config.EnrollmentConfig
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewEnrollmentService(repo repositories.Repository, publisher events.EventPublisher, cfg config.EnrollmentConfig, logger *slog.Logger, validator *validator.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== STATE TRANSITIONS =====

// Enroll registers a student on a course. The course row is locked for the
// duration of the transaction so the capacity check and the insert form one
// atomic unit: two concurrent enrolls on the last seat serialize, and the
// second sees the first one's row.
func (s *enrollmentService) Enroll(ctx context.Context, req *EnrollRequest) (*models.Enrollment, error) {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}

	// Fast path: when re-enrollment is off, any existing row blocks, so a
	// lookup without the course lock settles most duplicates cheaply. The
	// in-transaction check stays authoritative.
	if !s.cfg.AllowReenrollAfterDrop {
		if exists, err := s.repo.Enrollment().ExistsByStudentAndCourse(ctx, req.StudentID, req.CourseID); err == nil && exists {
			return nil, NewAlreadyEnrolledError()
		}
	}

	var enrollment *models.Enrollment
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Student().GetByID(ctx, req.StudentID); err != nil {
			return wrapStoreError(err, "student", req.StudentID)
		}

		course, err := tx.Course().LockByID(ctx, req.CourseID)
		if err != nil {
			return wrapStoreError(err, "course", req.CourseID)
		}

		existing, err := tx.Enrollment().GetByStudentAndCourse(ctx, req.StudentID, req.CourseID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return NewUnavailableError(err)
		}
		if existing != nil {
			if existing.Status != models.EnrollmentDropped || !s.cfg.AllowReenrollAfterDrop {
				return NewAlreadyEnrolledError()
			}
			// Reactivate the dropped row instead of inserting a second one,
			// keeping the (student, course) pair unique.
			if err := s.checkCapacity(ctx, tx, course); err != nil {
				return err
			}
			now := s.now()
			existing.Status = models.EnrollmentActive
			existing.EnrolledAt = now
			existing.Grade = nil
			existing.LastUpdated = now
			if err := tx.Enrollment().Update(ctx, existing); err != nil {
				return NewUnavailableError(err)
			}
			enrollment = existing
			return nil
		}

		if err := s.checkCapacity(ctx, tx, course); err != nil {
			return err
		}

		now := s.now()
		enrollment = &models.Enrollment{
			StudentID:   req.StudentID,
			CourseID:    req.CourseID,
			EnrolledAt:  now,
			Status:      models.EnrollmentActive,
			LastUpdated: now,
		}
		if err := tx.Enrollment().Create(ctx, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return NewAlreadyEnrolledError()
			}
			return NewUnavailableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEnrollmentCreated, enrollment)
	s.audit(ctx, req.StudentID, "ENROLLED", fmt.Sprintf("student %d enrolled in course %d", req.StudentID, req.CourseID))
	s.logger.Info("Student enrolled", "student_id", req.StudentID, "course_id", req.CourseID, "enrollment_id", enrollment.ID)

	return enrollment, nil
}

// Drop moves an Active enrollment to Dropped. Dropped and Completed are
// terminal for this operation.
func (s *enrollmentService) Drop(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		enrollment, err = tx.Enrollment().GetByID(ctx, enrollmentID)
		if err != nil {
			return wrapStoreError(err, "enrollment", enrollmentID)
		}

		if enrollment.Status != models.EnrollmentActive {
			return NewInvalidTransitionError(fmt.Sprintf("cannot drop enrollment in status %s", enrollment.Status))
		}

		enrollment.Status = models.EnrollmentDropped
		enrollment.LastUpdated = s.now()
		if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
			return NewUnavailableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEnrollmentDropped, enrollment)
	s.audit(ctx, enrollment.StudentID, "DROPPED", fmt.Sprintf("enrollment %d dropped", enrollment.ID))
	s.logger.Info("Enrollment dropped", "enrollment_id", enrollment.ID, "course_id", enrollment.CourseID)

	return enrollment, nil
}

// Update applies an optional status and/or grade change. Absent fields are
// left as they are. Status changes out of a terminal state are rejected.
func (s *enrollmentService) Update(ctx context.Context, enrollmentID uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}
	if req.Grade != nil {
		if *req.Grade < models.GradeMin || *req.Grade > models.GradeMax {
			return nil, NewInvalidGradeError()
		}
	}

	var enrollment *models.Enrollment
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		enrollment, err = tx.Enrollment().GetByID(ctx, enrollmentID)
		if err != nil {
			return wrapStoreError(err, "enrollment", enrollmentID)
		}

		if req.Status != nil && *req.Status != enrollment.Status {
			if enrollment.Status.Terminal() {
				return NewInvalidTransitionError(fmt.Sprintf("cannot transition from %s to %s", enrollment.Status, *req.Status))
			}
			enrollment.Status = *req.Status
		}
		if req.Grade != nil {
			enrollment.Grade = req.Grade
		}

		enrollment.LastUpdated = s.now()
		if err := tx.Enrollment().Update(ctx, enrollment); err != nil {
			return NewUnavailableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEnrollmentUpdated, enrollment)
	s.logger.Info("Enrollment updated", "enrollment_id", enrollment.ID, "status", enrollment.Status)

	return enrollment, nil
}

// ===== QUERIES =====

func (s *enrollmentService) GetByID(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, wrapStoreError(err, "enrollment", enrollmentID)
	}
	return enrollment, nil
}

func (s *enrollmentService) List(ctx context.Context, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	enrollments, total, err := s.repo.Enrollment().List(ctx, filters)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	return listResponse(enrollments, total, filters.Limit, filters.Offset), nil
}

func (s *enrollmentService) GetByStudent(ctx context.Context, studentID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if _, err := s.repo.Student().GetByID(ctx, studentID); err != nil {
		return nil, wrapStoreError(err, "student", studentID)
	}
	filters.StudentID = &studentID
	return s.List(ctx, filters)
}

func (s *enrollmentService) GetByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		return nil, wrapStoreError(err, "course", courseID)
	}
	filters.CourseID = &courseID
	return s.List(ctx, filters)
}

// GetRecent lists enrollments created within the last N days.
func (s *enrollmentService) GetRecent(ctx context.Context, days int, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	if days <= 0 {
		days = 7
	}
	from := s.now().AddDate(0, 0, -days)
	filters.DateFrom = &from
	return s.List(ctx, filters)
}

func (s *enrollmentService) Stats(ctx context.Context) (*repositories.EnrollmentStats, error) {
	stats, err := s.repo.Enrollment().Stats(ctx)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	return stats, nil
}

// Trends buckets enrollments by the local calendar day of their enrollment
// timestamp over an inclusive date range. averagePerDay divides the total by
// the number of days in the range and is 0 for an empty range or zero rows.
func (s *enrollmentService) Trends(ctx context.Context, startDate, endDate time.Time) (*EnrollmentTrendsResponse, error) {
	start := dayStart(startDate)
	end := dayStart(endDate)

	resp := &EnrollmentTrendsResponse{DailyCounts: map[string]int64{}}
	if end.Before(start) {
		return resp, nil
	}

	enrollments, err := s.repo.Enrollment().ListByDateRange(ctx, start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	for _, e := range enrollments {
		day := e.EnrolledAt.Local().Format(dayLayout)
		resp.DailyCounts[day]++
		resp.Total++
	}

	if resp.Total > 0 {
		resp.AveragePerDay = float64(resp.Total) / float64(daysInclusive(start, end))
	}

	return resp, nil
}

// ===== HELPERS =====

// checkCapacity counts Active rows for the locked course and fails when the
// ceiling would be exceeded. A nil capacity means unbounded.
func (s *enrollmentService) checkCapacity(ctx context.Context, tx repositories.Repository, course *models.Course) error {
	if course.Capacity == nil {
		return nil
	}
	active, err := tx.Enrollment().CountActiveByCourse(ctx, course.ID)
	if err != nil {
		return NewUnavailableError(err)
	}
	if active >= int64(*course.Capacity) {
		return NewCapacityExceededError()
	}
	return nil
}

func (s *enrollmentService) publish(ctx context.Context, topic string, e *models.Enrollment) {
	event := events.EnrollmentEvent{
		EnrollmentID: e.ID,
		StudentID:    e.StudentID,
		CourseID:     e.CourseID,
		Status:       e.Status,
		Grade:        e.Grade,
		OccurredAt:   s.now(),
	}
	if err := s.publisher.PublishEnrollmentEvent(ctx, topic, event); err != nil {
		s.logger.Warn("Failed to publish enrollment event", "topic", topic, "enrollment_id", e.ID, "error", err)
	}
}

func (s *enrollmentService) audit(ctx context.Context, userID uint, action, description string) {
	entry := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: description,
		Timestamp:   s.now(),
	}
	if err := s.repo.AuditLog().Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit log", "action", action, "error", err)
	}
}

func dayStart(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// daysInclusive counts calendar days from start through end, both
// midnight-truncated. Hour arithmetic would undercount ranges spanning a
// short DST-transition day, so the walk stays in calendar space.
func daysInclusive(start, end time.Time) int64 {
	var days int64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

func listResponse(enrollments []*models.Enrollment, total int64, limit, offset int) *EnrollmentListResponse {
	if limit <= 0 {
		limit = 20
	}
	return &EnrollmentListResponse{
		Enrollments: enrollments,
		Total:       total,
		Page:        offset/limit + 1,
		Size:        limit,
	}
}
