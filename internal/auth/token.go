package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"litrecord/internal/config"
	"litrecord/internal/domain"
)

// TokenService issues and verifies HS256 bearer tokens for API clients.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService. It returns nil when no secret is
// configured, which callers treat as authentication disabled.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	if cfg.Secret == "" {
		return nil
	}
	return &TokenService{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Issue signs a token for subject that expires after ttl.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims.
func (s *TokenService) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, fmt.Errorf("parsing token: %w", err))
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
