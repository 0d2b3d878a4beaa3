package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// ===== AUTH DTOs =====

type RegisterRequest struct {
	FirstName   string     `json:"first_name" validate:"required,max=50"`
	LastName    string     `json:"last_name" validate:"required,max=50"`
	Email       string     `json:"email" validate:"required,email,max=100"`
	Password    string     `json:"password" validate:"required"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// AuthResponse carries the issued credential pair. RefreshToken is empty
// on register, which issues an access token only.
type AuthResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	UserID       uint            `json:"user_id"`
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Role         models.UserRole `json:"role"`
	ExpiresIn    int64           `json:"expires_in"` // access token lifetime in seconds
}

// ===== ENROLLMENT DTOs =====

type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	CourseID  uint `json:"course_id" validate:"required"`
}

// UpdateEnrollmentRequest updates status and/or grade. Absent fields are
// unchanged.
type UpdateEnrollmentRequest struct {
	Status *models.EnrollmentStatus `json:"status" validate:"omitempty,oneof=Active Dropped Completed"`
	Grade  *float64                 `json:"grade"`
}

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

type EnrollmentTrendsResponse struct {
	DailyCounts   map[string]int64 `json:"daily_counts"` // keyed by local calendar day, "2006-01-02"
	Total         int64            `json:"total"`
	AveragePerDay float64          `json:"average_per_day"`
}

// ===== COURSE DTOs =====

type CreateCourseRequest struct {
	Code        string     `json:"code" validate:"required,course_code"`
	Title       *string    `json:"title" validate:"omitempty,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Credits     *int       `json:"credits" validate:"omitempty,min=1,max=30"`
	LecturerID  *uint      `json:"lecturer_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
	Metadata    []byte     `json:"metadata"`
}

type UpdateCourseRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Credits     *int       `json:"credits" validate:"omitempty,min=1,max=30"`
	LecturerID  *uint      `json:"lecturer_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

// ===== STUDENT DTOs =====

type CreateStudentRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=50"`
	LastName       string     `json:"last_name" validate:"required,max=50"`
	Email          string     `json:"email" validate:"required,email,max=100"`
	Password       string     `json:"password" validate:"required"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	PhoneNumber    *string    `json:"phone_number" validate:"omitempty,max=20"`
	Address        *string    `json:"address" validate:"omitempty,max=255"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
}

type UpdateStudentRequest struct {
	FirstName   *string    `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string    `json:"last_name" validate:"omitempty,max=50"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	PhoneNumber *string    `json:"phone_number" validate:"omitempty,max=20"`
	Address     *string    `json:"address" validate:"omitempty,max=255"`
}

type StudentListResponse struct {
	Students []*models.Student `json:"students"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
}

// ===== LECTURER DTOs =====

type CreateLecturerRequest struct {
	FirstName      string     `json:"first_name" validate:"required,max=50"`
	LastName       string     `json:"last_name" validate:"required,max=50"`
	Email          string     `json:"email" validate:"required,email,max=100"`
	Password       string     `json:"password" validate:"required"`
	Specialization *string    `json:"specialization" validate:"omitempty,max=100"`
	HireDate       *time.Time `json:"hire_date"`
	PhoneNumber    *string    `json:"phone_number" validate:"omitempty,max=20"`
}

type LecturerListResponse struct {
	Lecturers []*models.Lecturer `json:"lecturers"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type AuditTrailResponse struct {
	Entries []*models.AuditLog `json:"entries"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Size    int                `json:"size"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	HasRole(user *models.User, role models.UserRole) bool
}

// TokenDenylist revokes refresh tokens ahead of their expiry so logout
// invalidates the outstanding token.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, req *EnrollRequest) (*models.Enrollment, error)
	Drop(ctx context.Context, enrollmentID uint) (*models.Enrollment, error)
	Update(ctx context.Context, enrollmentID uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error)
	GetByID(ctx context.Context, enrollmentID uint) (*models.Enrollment, error)
	List(ctx context.Context, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	GetByStudent(ctx context.Context, studentID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	GetByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	GetRecent(ctx context.Context, days int, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	Stats(ctx context.Context) (*repositories.EnrollmentStats, error)
	Trends(ctx context.Context, startDate, endDate time.Time) (*EnrollmentTrendsResponse, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error)
}

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest) (*models.Student, error)
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	Update(ctx context.Context, id uint, req *UpdateStudentRequest) (*models.Student, error)
	List(ctx context.Context, limit, offset int) (*StudentListResponse, error)
}

type LecturerService interface {
	Create(ctx context.Context, req *CreateLecturerRequest) (*models.Lecturer, error)
	GetByID(ctx context.Context, id uint) (*models.Lecturer, error)
	List(ctx context.Context, limit, offset int) (*LecturerListResponse, error)
}

type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	RoleCounts(ctx context.Context) (map[models.UserRole]int64, error)
	AuditTrail(ctx context.Context, userID uint, limit, offset int) (*AuditTrailResponse, error)
}

// ReportService renders enrollment data to spreadsheet workbooks.
type ReportService interface {
	ExportEnrollments(ctx context.Context, filters repositories.EnrollmentFilters) ([]byte, error)
	ExportTrends(ctx context.Context, startDate, endDate time.Time) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Enrollment() EnrollmentService
	Course() CourseService
	Student() StudentService
	Lecturer() LecturerService
	User() UserService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
