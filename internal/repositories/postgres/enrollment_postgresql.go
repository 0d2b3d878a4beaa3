package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := translateError(e.db.WithContext(ctx).Create(enrollment).Error); err != nil {
		return err
	}
	cache.InvalidateEnrollmentCache(ctx, e.cacheManager, enrollment.ID, enrollment.CourseID)
	return nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, enrollment *models.Enrollment) error {
	if err := translateError(e.db.WithContext(ctx).Save(enrollment).Error); err != nil {
		return err
	}
	cache.InvalidateEnrollmentCache(ctx, e.cacheManager, enrollment.ID, enrollment.CourseID)
	return nil
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.db.WithContext(ctx).
		Preload("Student.User").
		Preload("Course").
		First(&enrollment, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Count(&count).Error
	return count, translateError(err)
}

func (e *EnrollmentPostgreSQL) List(ctx context.Context, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Enrollment{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("enrolled_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("enrolled_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applySort(query, "enrollments", filters.SortBy, filters.SortOrder)
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Preload("Student.User").Preload("Course").Find(&enrollments).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.db.WithContext(ctx).
		Where("enrolled_at >= ? AND enrolled_at <= ?", from, to).
		Order("enrolled_at asc").
		Find(&enrollments).Error
	if err != nil {
		return nil, translateError(err)
	}
	return enrollments, nil
}

// Stats aggregates over the live table on every call. The monitoring view
// is read straight from the store rather than the cache so it never lags
// behind a mutation.
func (e *EnrollmentPostgreSQL) Stats(ctx context.Context) (*repositories.EnrollmentStats, error) {
	var rows []struct {
		Status models.EnrollmentStatus
		Count  int64
	}
	err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	var stats repositories.EnrollmentStats
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.EnrollmentActive:
			stats.Active = row.Count
		case models.EnrollmentCompleted:
			stats.Completed = row.Count
		case models.EnrollmentDropped:
			stats.Dropped = row.Count
		}
	}
	return &stats, nil
}
