package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SAP-F-2025/student-service/internal/models"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and kind
	// mismatches. Callers that do not care about the distinction should
	// match on this error only.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned when the token verified fine but its
	// expiry has passed. It wraps ErrTokenInvalid so errors.Is on
	// ErrTokenInvalid still matches.
	ErrTokenExpired = fmt.Errorf("token has expired: %w", ErrTokenInvalid)
)

// Claims is the claim set carried by every issued token. Subject holds the
// user email.
type Claims struct {
	UserID uint            `json:"user_id"`
	Role   models.UserRole `json:"role"`
	Kind   TokenKind       `json:"kind"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HMAC-signed tokens. It holds no state
// beyond the signing key and TTLs, so Issue and Verify are safe for
// concurrent use and across process restarts.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// TTL returns the configured lifetime for the given token kind.
func (c *TokenCodec) TTL(kind TokenKind) time.Duration {
	if kind == TokenRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue creates a signed token for the user. The expiry is now plus the
// configured TTL for the kind.
func (c *TokenCodec) Issue(user *models.User, kind TokenKind, now time.Time) (string, error) {
	now = now.UTC()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses and validates a token against the expected kind at the
// given instant. It returns ErrTokenExpired for an otherwise valid but
// expired token and ErrTokenInvalid for everything else that fails.
func (c *TokenCodec) Verify(tokenString string, kind TokenKind, now time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Kind extracts the token kind without enforcing an expected one. The
// signature and expiry are still checked.
func (c *TokenCodec) Kind(tokenString string, now time.Time) (TokenKind, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	return claims.Kind, nil
}
