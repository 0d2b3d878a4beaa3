package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	codec     *auth.TokenCodec
	hasher    auth.PasswordHasher
	denylist  TokenDenylist
	cfg       config.AuthConfig
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, codec *auth.TokenCodec, hasher auth.PasswordHasher, denylist TokenDenylist, cfg config.AuthConfig, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		codec:     codec,
		hasher:    hasher,
		denylist:  denylist,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== REGISTRATION =====

// Register creates a user with the Student role plus its student profile
// in one transaction, then issues an access token. The unique index on
// users.email is the authoritative duplicate signal; a concurrent insert
// of the same email loses the race and gets DuplicateEmail here.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, NewValidationError(fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength))
	}

	// Fast path only; the unique index catches races.
	if exists, err := s.repo.User().ExistsByEmail(ctx, req.Email); err == nil && exists {
		return nil, NewDuplicateEmailError()
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

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Create(ctx, user); err != nil {
			return err
		}
		enrolledAt := s.now()
		student := &models.Student{
			ID:             user.ID,
			DateOfBirth:    req.DateOfBirth,
			EnrollmentDate: &enrolledAt,
		}
		return tx.Student().Create(ctx, student)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewDuplicateEmailError()
		}
		s.logger.Error("Failed to register user", "email_domain", emailDomain(req.Email), "error", err)
		return nil, NewUnavailableError(err)
	}

	s.audit(ctx, user.ID, "USER_REGISTERED", fmt.Sprintf("user %d registered with role %s", user.ID, user.Role))
	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)

	token, err := s.codec.Issue(user, auth.TokenAccess, s.now())
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	return s.authResponse(user, token, ""), nil
}

// ===== LOGIN / REFRESH =====

// Login verifies credentials and issues a fresh access and refresh token
// pair. Unknown email and wrong password produce the same error so the
// response does not reveal which accounts exist.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return nil, NewValidationError(errs.Error())
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Burn a comparison anyway so the miss costs as much as a mismatch.
			_ = s.hasher.Verify(dummyBcryptHash, req.Password)
			return nil, NewInvalidCredentialsError()
		}
		return nil, NewUnavailableError(err)
	}

	if err := s.hasher.Verify(user.Password, req.Password); err != nil {
		s.audit(ctx, user.ID, "LOGIN_FAILED", "invalid password")
		return nil, NewInvalidCredentialsError()
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	s.audit(ctx, user.ID, "LOGIN", "user logged in")
	s.logger.Info("User logged in", "user_id", user.ID)

	return s.authResponse(user, access, refresh), nil
}

// Refresh exchanges a valid refresh token for a new pair. Both tokens are
// rotated; the caller must discard the old refresh token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.codec.Verify(refreshToken, auth.TokenRefresh, s.now())
	if err != nil {
		return nil, NewInvalidTokenError()
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, refreshToken)
		if err != nil {
			return nil, NewUnavailableError(err)
		}
		if revoked {
			return nil, NewInvalidTokenError()
		}
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewInvalidTokenError()
		}
		return nil, NewUnavailableError(err)
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	s.logger.Debug("Token pair rotated", "user_id", user.ID)

	return s.authResponse(user, access, refresh), nil
}

// Logout revokes the refresh token for the remainder of its lifetime.
// Access tokens stay stateless and expire on their own, so only the
// refresh token needs server-side invalidation. An already invalid token
// is rejected rather than silently accepted.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.Verify(refreshToken, auth.TokenRefresh, s.now())
	if err != nil {
		return NewInvalidTokenError()
	}

	if s.denylist != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.now())
		if err := s.denylist.Revoke(ctx, refreshToken, ttl); err != nil {
			return NewUnavailableError(err)
		}
	}

	s.audit(ctx, claims.UserID, "LOGOUT", "user logged out")
	s.logger.Info("User logged out", "user_id", claims.UserID)
	return nil
}

// ===== PASSWORD & IDENTITY =====

func (s *authService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	if errs := s.validator.Struct(req); errs.HasErrors() {
		return NewValidationError(errs.Error())
	}
	if len(req.NewPassword) < s.cfg.MinPasswordLength {
		return NewValidationError(fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength))
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return wrapStoreError(err, "user", userID)
	}

	if err := s.hasher.Verify(user.Password, req.CurrentPassword); err != nil {
		s.audit(ctx, userID, "PASSWORD_CHANGE_FAILED", "current password mismatch")
		return NewInvalidCredentialsError()
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return NewUnavailableError(err)
	}

	user.Password = hash
	user.UpdatedAt = s.now()
	if err := s.repo.User().Update(ctx, user); err != nil {
		return NewUnavailableError(err)
	}

	s.audit(ctx, userID, "PASSWORD_CHANGED", "password updated")
	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// CurrentUser resolves an access token back to its user record.
func (s *authService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.codec.Verify(accessToken, auth.TokenAccess, s.now())
	if err != nil {
		return nil, NewInvalidTokenError()
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewInvalidTokenError()
		}
		return nil, NewUnavailableError(err)
	}
	return user, nil
}

func (s *authService) HasRole(user *models.User, role models.UserRole) bool {
	if user == nil {
		return false
	}
	return user.Role == role
}

// ===== HELPERS =====

// dummyBcryptHash is a hash of a random string nobody knows. Verifying
// against it keeps login latency flat when the email does not exist.
const dummyBcryptHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

func (s *authService) issuePair(user *models.User) (access, refresh string, err error) {
	now := s.now()
	access, err = s.codec.Issue(user, auth.TokenAccess, now)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.codec.Issue(user, auth.TokenRefresh, now)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) authResponse(user *models.User, access, refresh string) *AuthResponse {
	return &AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		ExpiresIn:    int64(s.codec.TTL(auth.TokenAccess).Seconds()),
	}
}

// audit records the action without failing the caller when the write fails.
func (s *authService) audit(ctx context.Context, userID uint, action, description string) {
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

// normalizeEmail lowercases the address before it is persisted. The unique
// index on users.email compares bytes, so case variants must collapse to
// one stored form for the index to close the concurrent-registration race.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
