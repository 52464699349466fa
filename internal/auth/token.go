// Package auth implements the token service and the authorization gate:
// JWT issuance and verification, the session cookie, and the middleware
// that attaches a validated identity to the request context.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gymplanner/gymplanner/internal/config"
	"github.com/gymplanner/gymplanner/internal/models"
)

// Claims is the decoded token payload. Subject duplicates UserID per the
// registered-claims convention.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer session tokens.
type TokenService struct {
	cfg config.AuthConfig
}

func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// Issue produces a signed HS256 token for the user, valid for the
// configured TTL. The jti is a fresh uuid; callers running the
// single-session policy store it in the user's token slot.
func (s *TokenService) Issue(u *models.User) (token string, jti string, err error) {
	now := time.Now()
	jti = uuid.NewString()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tok.SignedString([]byte(s.cfg.JWTSecret))
	return token, jti, err
}

// Parse verifies signature and expiry and returns the decoded claims.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c, ok := token.Claims.(*Claims); ok && token.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
