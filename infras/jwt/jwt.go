package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"innkeeper/config"
	"innkeeper/shared/timezone"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claim")
)

// TokenType represents the type of JWT token
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims represents the JWT claims structure. TenantID is the opaque account
// identifier every stored key is scoped under.
type Claims struct {
	TenantID string    `json:"tenant_id"`
	Email    string    `json:"email"`
	TokenID  string    `json:"token_id"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

type JWT interface {
	GenerateToken(tenantID, email string, tokenType TokenType) (string, error)
	ValidateToken(tokenString string, tokenType TokenType) (*Claims, error)
}

type jwtImpl struct {
	cfg *config.Config
}

func New(cfg *config.Config) JWT {
	return &jwtImpl{cfg: cfg}
}

func (j *jwtImpl) secretFor(tokenType TokenType) ([]byte, time.Duration) {
	if tokenType == RefreshToken {
		return []byte(j.cfg.JWT.RefreshSecret), time.Duration(j.cfg.JWT.RefreshExpireMin) * time.Minute
	}

	return []byte(j.cfg.JWT.AccessSecret), time.Duration(j.cfg.JWT.AccessExpireMin) * time.Minute
}

func (j *jwtImpl) GenerateToken(tenantID, email string, tokenType TokenType) (string, error) {
	secret, expiry := j.secretFor(tokenType)
	now := timezone.Now()

	claims := Claims{
		TenantID: tenantID,
		Email:    email,
		TokenID:  uuid.NewString(),
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (j *jwtImpl) ValidateToken(tokenString string, tokenType TokenType) (*Claims, error) {
	secret, _ := j.secretFor(tokenType)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != tokenType {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization header.
func ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
