package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

func newLecturerFixture(t *testing.T) (LecturerService, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	hasher := auth.NewBcryptHasher(4)
	cfg := config.AuthConfig{MinPasswordLength: 8, BcryptCost: 4}
	svc := NewLecturerService(repo, hasher, cfg, testLogger(), validator.NewValidator())
	return svc, repo
}

func lecturerReq(email string) *CreateLecturerRequest {
	spec := "Databases"
	return &CreateLecturerRequest{
		FirstName:      "Grace",
		LastName:       "Hopper",
		Email:          email,
		Password:       "correct-horse",
		Specialization: &spec,
	}
}

func TestLecturerCreate(t *testing.T) {
	svc, repo := newLecturerFixture(t)
	ctx := context.Background()

	lecturer, err := svc.Create(ctx, lecturerReq("grace@example.com"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if lecturer.User.Role != models.RoleLecturer {
		t.Errorf("expected role Lecturer, got %s", lecturer.User.Role)
	}
	if lecturer.Specialization == nil || *lecturer.Specialization != "Databases" {
		t.Errorf("specialization not persisted: %v", lecturer.Specialization)
	}
	if lecturer.HireDate == nil {
		t.Error("expected hire date to default to now")
	}

	stored, err := repo.Lecturer().GetByID(ctx, lecturer.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.ID != lecturer.ID {
		t.Errorf("stored ID %d, want %d", stored.ID, lecturer.ID)
	}
}

func TestLecturerCreateDuplicateEmail(t *testing.T) {
	svc, _ := newLecturerFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, lecturerReq("grace@example.com")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ctx, lecturerReq("Grace@Example.COM"))
	if !IsCode(err, ErrCodeDuplicateEmail) {
		t.Fatalf("expected DuplicateEmail, got %v", err)
	}
}

func TestLecturerCreateShortPassword(t *testing.T) {
	svc, _ := newLecturerFixture(t)

	req := lecturerReq("grace@example.com")
	req.Password = "short"
	if _, err := svc.Create(context.Background(), req); !IsCode(err, ErrCodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLecturerGetUnknown(t *testing.T) {
	svc, _ := newLecturerFixture(t)

	if _, err := svc.GetByID(context.Background(), 99); !IsCode(err, ErrCodeNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestLecturerList(t *testing.T) {
	svc, _ := newLecturerFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, lecturerReq("a@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, lecturerReq("b@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resp, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 2 || len(resp.Lecturers) != 2 {
		t.Errorf("expected 2 lecturers, got total=%d len=%d", resp.Total, len(resp.Lecturers))
	}
	if resp.Page != 1 || resp.Size != 20 {
		t.Errorf("unexpected pagination defaults: page=%d size=%d", resp.Page, resp.Size)
	}
}

// A course may name its lecturer at creation time; the assignment must
// resolve against lecturers provisioned through the service.
func TestCourseCreateWithLecturer(t *testing.T) {
	repo := newMockRepository()
	hasher := auth.NewBcryptHasher(4)
	cfg := config.AuthConfig{MinPasswordLength: 8, BcryptCost: 4}
	lecturers := NewLecturerService(repo, hasher, cfg, testLogger(), validator.NewValidator())
	courses := NewCourseService(repo, testLogger(), validator.NewValidator())
	ctx := context.Background()

	lecturer, err := lecturers.Create(ctx, lecturerReq("grace@example.com"))
	if err != nil {
		t.Fatalf("lecturer create failed: %v", err)
	}

	course, err := courses.Create(ctx, &CreateCourseRequest{
		Code:       "CS101",
		LecturerID: &lecturer.ID,
	})
	if err != nil {
		t.Fatalf("course create with lecturer failed: %v", err)
	}
	if course.LecturerID == nil || *course.LecturerID != lecturer.ID {
		t.Errorf("lecturer assignment lost: %v", course.LecturerID)
	}

	// An unknown lecturer still rejects the assignment.
	missing := lecturer.ID + 100
	if _, err := courses.Create(ctx, &CreateCourseRequest{Code: "CS102", LecturerID: &missing}); !IsCode(err, ErrCodeNotFound) {
		t.Fatalf("expected NotFound for unknown lecturer, got %v", err)
	}
}
