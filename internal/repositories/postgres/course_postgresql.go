package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	return translateError(c.db.WithContext(ctx).Create(course).Error)
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	if err := translateError(c.db.WithContext(ctx).Save(course).Error); err != nil {
		return err
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := c.db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&course).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var courses []*models.Course
	var total int64

	query := c.db.WithContext(ctx).Model(&models.Course{})
	if filters.LecturerID != nil {
		query = query.Where("lecturer_id = ?", *filters.LecturerID)
	}
	if filters.Query != "" {
		pattern := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("lower(code) LIKE ? OR lower(title) LIKE ?", pattern, pattern)
	}
	if filters.StartFrom != nil {
		query = query.Where("start_date >= ?", *filters.StartFrom)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applySort(query, "courses", filters.SortBy, filters.SortOrder)
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Preload("Lecturer.User").Find(&courses).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return courses, total, nil
}

// LockByID takes a FOR UPDATE row lock so the capacity check-and-insert in
// the enrollment transaction is serialized per course. The lock is held
// until the surrounding transaction commits.
func (c *CoursePostgreSQL) LockByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&course, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &course, nil
}
