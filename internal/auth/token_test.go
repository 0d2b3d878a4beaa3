package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    42,
		Email: "jane.doe@university.edu",
		Role:  models.RoleStudent,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour, 24*time.Hour)
	now := time.Now()

	token, err := codec.Issue(testUser(), TokenAccess, now)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims, err := codec.Verify(token, TokenAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.Subject != "jane.doe@university.edu" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d", claims.UserID)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.Kind != TokenAccess {
		t.Errorf("kind = %q", claims.Kind)
	}
}

func TestVerifyExpired(t *testing.T) {
	ttl := time.Hour
	codec := NewTokenCodec("test-secret", ttl, 24*time.Hour)
	now := time.Now()

	token, err := codec.Issue(testUser(), TokenAccess, now)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	_, err = codec.Verify(token, TokenAccess, now.Add(ttl+time.Second))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	// Expired still degrades to the generic invalid kind for callers that
	// do not distinguish.
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired to match ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour, 24*time.Hour)
	now := time.Now()

	token, err := codec.Issue(testUser(), TokenAccess, now)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Verify(tampered, TokenAccess, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestVerifyWrongKind(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour, 24*time.Hour)
	now := time.Now()

	refresh, err := codec.Issue(testUser(), TokenRefresh, now)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	// A refresh token presented where an access token is expected must be
	// rejected even though its signature is valid.
	if _, err := codec.Verify(refresh, TokenAccess, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for kind mismatch, got %v", err)
	}

	kind, err := codec.Kind(refresh, now)
	if err != nil {
		t.Fatalf("kind error: %v", err)
	}
	if kind != TokenRefresh {
		t.Errorf("kind = %q, want refresh", kind)
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour, 24*time.Hour)
	now := time.Now()

	for _, tc := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := codec.Verify(tc, TokenAccess, now); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%q) = %v, want ErrTokenInvalid", tc, err)
		}
	}
}

func TestVerifyDifferentSecret(t *testing.T) {
	now := time.Now()
	token, err := NewTokenCodec("secret-a", time.Hour, time.Hour).Issue(testUser(), TokenAccess, now)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := NewTokenCodec("secret-b", time.Hour, time.Hour).Verify(token, TokenAccess, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid across secrets, got %v", err)
	}
}
