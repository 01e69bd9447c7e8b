// Package token issues and verifies the signed session tokens that
// carry a user's identity and role.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbenson/userapi/internal/models"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

var (
	// ErrExpired means the token was well formed and correctly signed
	// but its expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers everything else: malformed, tampered, or
	// signed with a different secret.
	ErrInvalid = errors.New("invalid token")
)

// Claims are the facts encoded in a session token. Subject holds the
// user ID.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single HS256 secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for the given identity, expiring after
// the service TTL.
func (s *Service) Issue(userID, email string, role models.Role) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("signing secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
// An expired but otherwise intact token yields ErrExpired; any other
// failure yields ErrInvalid. Whether the subject still exists is the
// caller's concern.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	return &claims, nil
}
