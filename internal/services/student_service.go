package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	hasher    auth.PasswordHasher
	cfg       config.AuthConfig
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewStudentService(repo repositories.Repository, hasher auth.PasswordHasher, cfg config.AuthConfig, logger *slog.Logger, validator *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Create provisions a student account on behalf of an administrator, with
// the same one-transaction user-plus-profile write as self registration.
func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest) (*models.Student, error) {
	req.Email = normalizeEmail(req.Email)
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, NewValidationError(fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		Role:      models.RoleStudent,
	}
	var student *models.Student

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Create(ctx, user); err != nil {
			return err
		}
		enrollmentDate := req.EnrollmentDate
		if enrollmentDate == nil {
			now := s.now()
			enrollmentDate = &now
		}
		student = &models.Student{
			ID:             user.ID,
			DateOfBirth:    req.DateOfBirth,
			PhoneNumber:    req.PhoneNumber,
			Address:        req.Address,
			EnrollmentDate: enrollmentDate,
		}
		return tx.Student().Create(ctx, student)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewDuplicateEmailError()
		}
		return nil, NewUnavailableError(err)
	}

	student.User = *user
	s.logger.Info("Student created", "student_id", student.ID)
	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "student", id)
	}
	return student, nil
}

func (s *studentService) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, err := s.repo.Student().GetByEmail(ctx, email)
	if err != nil {
		return nil, wrapStoreError(err, "student", 0)
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req *UpdateStudentRequest) (*models.Student, error) {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}

	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "student", id)
	}

	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.PhoneNumber != nil {
		student.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		student.Address = req.Address
	}

	nameChanged := req.FirstName != nil || req.LastName != nil

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Student().Update(ctx, student); err != nil {
			return err
		}
		if !nameChanged {
			return nil
		}
		user, err := tx.User().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		user.UpdatedAt = s.now()
		return tx.User().Update(ctx, user)
	})
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	s.logger.Info("Student updated", "student_id", id)
	return student, nil
}

func (s *studentService) List(ctx context.Context, limit, offset int) (*StudentListResponse, error) {
	students, total, err := s.repo.Student().List(ctx, limit, offset)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	if limit <= 0 {
		limit = 20
	}
	return &StudentListResponse{
		Students: students,
		Total:    total,
		Page:     offset/limit + 1,
		Size:     limit,
	}, nil
}
