package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/student-service/internal/models"
)

func newUserFixture(t *testing.T) (UserService, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	svc := NewUserService(repo, testLogger())
	return svc, repo
}

func TestUserRoleCounts(t *testing.T) {
	svc, repo := newUserFixture(t)

	repo.seedStudent(1, "a@example.com")
	repo.seedStudent(2, "b@example.com")

	counts, err := svc.RoleCounts(context.Background())
	if err != nil {
		t.Fatalf("RoleCounts failed: %v", err)
	}
	if counts[models.RoleStudent] != 2 {
		t.Errorf("expected 2 students, got %d", counts[models.RoleStudent])
	}
	if counts[models.RoleAdmin] != 0 {
		t.Errorf("expected 0 admins, got %d", counts[models.RoleAdmin])
	}
}

func TestUserAuditTrail(t *testing.T) {
	svc, repo := newUserFixture(t)
	ctx := context.Background()

	repo.seedStudent(1, "a@example.com")
	repo.AuditLog().Append(ctx, &models.AuditLog{UserID: 1, Action: "LOGIN"})
	repo.AuditLog().Append(ctx, &models.AuditLog{UserID: 1, Action: "ENROLLED"})
	repo.AuditLog().Append(ctx, &models.AuditLog{UserID: 2, Action: "LOGIN"})

	trail, err := svc.AuditTrail(ctx, 1, 20, 0)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if trail.Total != 2 || len(trail.Entries) != 2 {
		t.Fatalf("expected 2 entries for user 1, got total=%d len=%d", trail.Total, len(trail.Entries))
	}
	for _, e := range trail.Entries {
		if e.UserID != 1 {
			t.Errorf("entry for wrong user: %+v", e)
		}
	}
}

func TestUserAuditTrailUnknownUser(t *testing.T) {
	svc, _ := newUserFixture(t)

	if _, err := svc.AuditTrail(context.Background(), 99, 20, 0); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
