package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/finsight/portal-server-go/internal/model"
)

// ErrInvalidToken is the only verification failure the service reports.
// Malformed tokens, bad signatures, and expired tokens are indistinguishable
// to callers, so clients cannot probe which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries identity and tier for a signed session token.
type Claims struct {
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	AdminName string     `json:"adminName,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the identity id the token was issued for.
func (c *Claims) SubjectID() string {
	return c.RegisteredClaims.Subject
}

// Service issues and verifies HS256-signed bearer tokens. Verification is
// pure computation; the server keeps no session state and no revocation list,
// so a compromised token stays valid until its expiry.
type Service struct {
	secret []byte
}

// NewService builds a token service. The signing key is process-wide
// configuration; an empty key is a startup error, never a silent default.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	return &Service{secret: []byte(secret)}, nil
}

// Issue signs a token for the given identity valid for ttl from now.
// Expiry is absolute, not sliding.
func (s *Service) Issue(subjectID, email string, role model.Role, adminName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     email,
		Role:      role,
		AdminName: adminName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// Every failure mode maps to ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
