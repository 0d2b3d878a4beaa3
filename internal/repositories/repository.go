package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is the storage-level missing-record signal. Implementations
// translate their driver's sentinel (e.g. gorm.ErrRecordNotFound) to it.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is the storage-level uniqueness-violation signal. It is the
// authoritative source for duplicate-email and duplicate-enrollment
// detection; service-level existence checks are fast paths only.
var ErrDuplicate = errors.New("duplicate record")

// IsNotFoundError reports whether err is the missing-record signal.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is the uniqueness-violation signal.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// Repository aggregates all sub-repositories behind one handle.
type Repository interface {
	User() UserRepository
	Student() StudentRepository
	Lecturer() LecturerRepository
	Course() CourseRepository
	Enrollment() EnrollmentRepository
	AuditLog() AuditLogRepository

	// WithTransaction runs fn against a Repository bound to a single
	// transaction. Returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
