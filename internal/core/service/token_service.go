package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talentgate/account-service/internal/core/domain"
)

const DefaultTokenTTL = time.Hour

// SessionClaims is the signed claim set carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
	Name string      `json:"name"`
}

// TokenService issues and verifies HS256 session tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token embedding the user's id, role and name.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		ID:   user.ID,
		Role: user.Role,
		Name: user.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the identity carried by the token.
func (s *TokenService) Verify(tokenString string) (domain.Identity, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Identity{}, classifyTokenError(err)
	}
	if strings.TrimSpace(claims.ID) == "" || !claims.Role.Valid() {
		return domain.Identity{}, domain.ErrMalformedToken
	}
	return domain.Identity{UserID: claims.ID, Role: claims.Role, Name: claims.Name}, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrInvalidToken
	default:
		return domain.ErrMalformedToken
	}
}
