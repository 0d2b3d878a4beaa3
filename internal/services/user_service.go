package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(err, "user", id)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/limit + 1,
		Size:  limit,
	}, nil
}

// AuditTrail lists a user's audit log entries, newest first.
func (s *userService) AuditTrail(ctx context.Context, userID uint, limit, offset int) (*AuditTrailResponse, error) {
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		return nil, wrapStoreError(err, "user", userID)
	}

	if limit <= 0 {
		limit = 20
	}
	entries, total, err := s.repo.AuditLog().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	return &AuditTrailResponse{
		Entries: entries,
		Total:   total,
		Page:    offset/limit + 1,
		Size:    limit,
	}, nil
}

func (s *userService) RoleCounts(ctx context.Context) (map[models.UserRole]int64, error) {
	counts := make(map[models.UserRole]int64, 3)
	for _, role := range []models.UserRole{models.RoleStudent, models.RoleLecturer, models.RoleAdmin} {
		n, err := s.repo.User().CountByRole(ctx, role)
		if err != nil {
			return nil, NewUnavailableError(err)
		}
		counts[role] = n
	}
	return counts, nil
}
