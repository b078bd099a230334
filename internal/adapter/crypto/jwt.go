package crypto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/develevate.net/internal/config"
	"gitlab.com/develevate.net/internal/core/ports/primary"
)

var _ primary.TokenVerifier = (*JWTService)(nil)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("jwt secret is not configured")
)

// JWTService verifies HMAC signed tokens issued by the platform
type JWTService struct {
	HMACSecretKey string
}

func NewJWTService(jwtConfig *config.JwtConfig) *JWTService {
	return &JWTService{
		HMACSecretKey: jwtConfig.Secret,
	}
}

// GenerateTokenHMAC signs a token for subject valid for ttl
func (j *JWTService) GenerateTokenHMAC(subject string, ttl time.Duration) (string, error) {
	if j.HMACSecretKey == "" {
		return "", ErrMissingKey
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return tok.SignedString([]byte(j.HMACSecretKey))
}

// VerifyToken checks signature and expiry and returns the token subject
func (j *JWTService) VerifyToken(ctx context.Context, token string) (string, error) {
	if j.HMACSecretKey == "" {
		return "", ErrMissingKey
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(j.HMACSecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}
