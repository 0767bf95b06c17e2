package service

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind selects the secret and claim shape used by Verify.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// TokenConfig is everything the issuer needs. Secrets are never read from
// the environment inside this package.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AccessClaims identify the caller and carry the role used by role gates.
type AccessClaims struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the user id.
type RefreshClaims struct {
	ID uint `json:"id"`
	jwt.RegisteredClaims
}

// VerifiedToken is the payload of a token that passed Verify. Role is empty
// for refresh tokens.
type VerifiedToken struct {
	UserID    uint
	Role      model.Role
	ExpiresAt time.Time
}

type TokenIssuer struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	return &TokenIssuer{config: config, now: time.Now}
}

// WithClock replaces the issuer's clock. Used by tests to move past expiry.
func (s *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	s.now = now
	return s
}

// AccessConfigured reports whether access tokens can be signed and checked.
func (s *TokenIssuer) AccessConfigured() bool {
	return s.config.AccessSecret != ""
}

// AccessTTL is the lifetime of newly issued access tokens.
func (s *TokenIssuer) AccessTTL() time.Duration {
	return s.config.AccessTTL
}

// IssueAccessToken signs {id, role} with the access secret.
func (s *TokenIssuer) IssueAccessToken(user *model.User) (string, error) {
	if s.config.AccessSecret == "" {
		return "", apperrors.ErrServerMisconfigured
	}

	now := s.now()
	claims := &AccessClaims{
		ID:   user.ID,
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs {id} with the refresh secret.
func (s *TokenIssuer) IssueRefreshToken(user *model.User) (string, error) {
	if s.config.RefreshSecret == "" {
		return "", apperrors.ErrServerMisconfigured
	}

	now := s.now()
	claims := &RefreshClaims{
		ID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.RefreshSecret))
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry for the given kind. Failures are
// ErrInvalidToken (bad signature or shape), ErrTokenExpired, or
// ErrTokenVerification for anything else.
func (s *TokenIssuer) Verify(tokenString string, kind TokenKind) (*VerifiedToken, error) {
	secret := s.config.AccessSecret
	if kind == RefreshToken {
		secret = s.config.RefreshSecret
	}
	if secret == "" {
		return nil, apperrors.ErrServerMisconfigured
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}

	if kind == RefreshToken {
		claims := &RefreshClaims{}
		if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...); err != nil {
			return nil, mapJWTError(err)
		}
		if claims.ID == 0 {
			return nil, apperrors.ErrInvalidToken
		}
		return &VerifiedToken{UserID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
	}

	claims := &AccessClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...); err != nil {
		return nil, mapJWTError(err)
	}
	// A token without a role cannot be an access token.
	if claims.ID == 0 || claims.Role == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return &VerifiedToken{
		UserID:    claims.ID,
		Role:      model.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.WrapError(apperrors.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.WrapError(apperrors.ErrInvalidToken, err)
	default:
		return apperrors.WrapError(apperrors.ErrTokenVerification, err)
	}
}
