package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	codec     *auth.TokenCodec
	hasher    auth.PasswordHasher
	denylist  TokenDenylist
	publisher events.EventPublisher
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validator

	// Service instances
	authService       AuthService
	enrollmentService EnrollmentService
	courseService     CourseService
	studentService    StudentService
	lecturerService   LecturerService
	userService       UserService
	reportService     ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, codec *auth.TokenCodec, hasher auth.PasswordHasher, denylist TokenDenylist, publisher events.EventPublisher, cfg *config.Config, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	return &serviceManager{
		repo:      repo,
		codec:     codec,
		hasher:    hasher,
		denylist:  denylist,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.codec, sm.hasher, sm.denylist, sm.cfg.Auth, sm.logger, sm.validator)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.publisher, sm.cfg.Enrollment, sm.logger, sm.validator)
	sm.courseService = NewCourseService(sm.repo, sm.logger, sm.validator)
	sm.studentService = NewStudentService(sm.repo, sm.hasher, sm.cfg.Auth, sm.logger, sm.validator)
	sm.lecturerService = NewLecturerService(sm.repo, sm.hasher, sm.cfg.Auth, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger)
	sm.reportService = NewReportService(sm.repo, sm.enrollmentService, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Warn("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.enrollmentService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.courseService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.studentService
}

func (sm *serviceManager) Lecturer() LecturerService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.lecturerService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}
