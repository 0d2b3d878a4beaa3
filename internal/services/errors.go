package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// ErrorCode classifies a service failure. Every code is a
// recoverable-by-caller condition; storage faults surface as
// ErrCodeUnavailable without the storage-layer detail.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeAlreadyEnrolled    ErrorCode = "ALREADY_ENROLLED"
	ErrCodeCapacityExceeded   ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidGrade       ErrorCode = "INVALID_GRADE"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeValidation         ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnavailable        ErrorCode = "UNAVAILABLE"
)

// ServiceError is the typed failure value returned by all services. The
// message never carries raw passwords or full tokens.
type ServiceError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewServiceError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func NewNotFoundError(resource string, id uint) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s with id %d not found", resource, id),
	}
}

func NewDuplicateEmailError() *ServiceError {
	return &ServiceError{Code: ErrCodeDuplicateEmail, Message: "email already exists"}
}

func NewAlreadyEnrolledError() *ServiceError {
	return &ServiceError{Code: ErrCodeAlreadyEnrolled, Message: "student is already enrolled in this course"}
}

func NewCapacityExceededError() *ServiceError {
	return &ServiceError{Code: ErrCodeCapacityExceeded, Message: "course is at full capacity"}
}

func NewInvalidTransitionError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidTransition, Message: message}
}

func NewInvalidGradeError() *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInvalidGrade,
		Message: fmt.Sprintf("grade must be between %.1f and %.1f", 0.0, 10.0),
	}
}

// NewInvalidCredentialsError intentionally does not disclose whether the
// email or the password was wrong.
func NewInvalidCredentialsError() *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidCredentials, Message: "invalid email or password"}
}

func NewInvalidTokenError() *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidToken, Message: "token is invalid or expired"}
}

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: message}
}

func NewUnavailableError(err error) *ServiceError {
	// The underlying cause stays server-side; callers only learn the
	// operation could not be served.
	return &ServiceError{Code: ErrCodeUnavailable, Message: "storage temporarily unavailable"}
}

// CodeOf extracts the error code, or ErrCodeUnavailable for untyped
// errors.
func CodeOf(err error) ErrorCode {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeUnavailable
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func IsNotFound(err error) bool          { return IsCode(err, ErrCodeNotFound) }
func IsInvalidCredentials(err error) bool { return IsCode(err, ErrCodeInvalidCredentials) }
func IsInvalidToken(err error) bool       { return IsCode(err, ErrCodeInvalidToken) }

// wrapStoreError translates a repository failure into the service
// taxonomy, surfacing anything unanticipated as Unavailable.
func wrapStoreError(err error, resource string, id uint) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFoundError(err):
		return NewNotFoundError(resource, id)
	default:
		return NewUnavailableError(err)
	}
}
