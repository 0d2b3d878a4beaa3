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

type lecturerService struct {
	repo      repositories.Repository
	hasher    auth.PasswordHasher
	cfg       config.AuthConfig
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewLecturerService(repo repositories.Repository, hasher auth.PasswordHasher, cfg config.AuthConfig, logger *slog.Logger, validator *validator.Validator) LecturerService {
	return &lecturerService{
		repo:      repo,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// Create provisions a lecturer account: a Lecturer-role user plus its
// profile in one transaction, so courses can resolve lecturer_id.
func (s *lecturerService) Create(ctx context.Context, req *CreateLecturerRequest) (*models.Lecturer, error) {
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
		Role:      models.RoleLecturer,
	}
	var lecturer *models.Lecturer

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Create(ctx, user); err != nil {
			return err
		}
		hireDate := req.HireDate
		if hireDate == nil {
			now := s.now()
			hireDate = &now
		}
		lecturer = &models.Lecturer{
			ID:             user.ID,
			Specialization: req.Specialization,
			HireDate:       hireDate,
			PhoneNumber:    req.PhoneNumber,
		}
		return tx.Lecturer().Create(ctx, lecturer)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewDuplicateEmailError()
		}
		return nil, NewUnavailableError(err)
	}

	lecturer.User = *user
	s.logger.Info("Lecturer created", "lecturer_id", lecturer.ID)
	return lecturer, nil
}

func (s *lecturerService) GetByID(ctx context.Context, id uint) (*models.Lecturer, error) {
	lecturer, err := s.repo.Lecturer().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "lecturer", id)
	}
	return lecturer, nil
}

func (s *lecturerService) List(ctx context.Context, limit, offset int) (*LecturerListResponse, error) {
	lecturers, total, err := s.repo.Lecturer().List(ctx, limit, offset)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	if limit <= 0 {
		limit = 20
	}
	return &LecturerListResponse{
		Lecturers: lecturers,
		Total:     total,
		Page:      offset/limit + 1,
		Size:      limit,
	}, nil
}
