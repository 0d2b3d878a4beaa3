package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Query     string           `json:"query"` // matches name or email
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "email", "last_name"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type CourseFilters struct {
	LecturerID *uint      `json:"lecturer_id"`
	Query      string     `json:"query"` // matches code or title
	StartFrom  *time.Time `json:"start_from"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

type EnrollmentFilters struct {
	StudentID *uint                    `json:"student_id"`
	CourseID  *uint                    `json:"course_id"`
	Status    *models.EnrollmentStatus `json:"status"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"` // "enrolled_at", "last_updated"
	SortOrder string                   `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type EnrollmentStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Dropped   int64 `json:"dropped"`
}

type CourseStats struct {
	CourseID       uint  `json:"course_id"`
	ActiveCount    int64 `json:"active_count"`
	TotalCount     int64 `json:"total_count"`
	Capacity       *int  `json:"capacity"`
	SeatsRemaining *int  `json:"seats_remaining"` // nil when capacity is unbounded
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	List(ctx context.Context, limit, offset int) ([]*models.Student, int64, error)
}

type LecturerRepository interface {
	Create(ctx context.Context, lecturer *models.Lecturer) error
	GetByID(ctx context.Context, id uint) (*models.Lecturer, error)
	List(ctx context.Context, limit, offset int) ([]*models.Lecturer, int64, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)

	// LockByID reads the course while holding a row lock for the duration
	// of the surrounding transaction. Outside a transaction it behaves
	// like GetByID.
	LockByID(ctx context.Context, id uint) (*models.Course, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint) (*models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (*models.Enrollment, error)
	ExistsByStudentAndCourse(ctx context.Context, studentID, courseID uint) (bool, error)
	CountActiveByCourse(ctx context.Context, courseID uint) (int64, error)
	List(ctx context.Context, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Enrollment, error)
	Stats(ctx context.Context) (*EnrollmentStats, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, log *models.AuditLog) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, int64, error)
}
