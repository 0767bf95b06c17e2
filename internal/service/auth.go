package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"gorm.io/gorm"
)

type AuthService struct {
	repoUser *repository.UserRepository
	tokens   *TokenIssuer
	hasher   PasswordHasher
	metrics  *metrics.Metrics
}

func NewAuthService(repo *repository.UserRepository, tokens *TokenIssuer, hasher PasswordHasher, m *metrics.Metrics) *AuthService {
	return &AuthService{
		repoUser: repo,
		tokens:   tokens,
		hasher:   hasher,
		metrics:  m,
	}
}

// Register creates a user with role user. No tokens are issued.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) error {
	ctx = ctxutil.Tag(ctx, "service", "Register")

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case username == "":
		return apperrors.NewValidationError("username", "username is required")
	case email == "":
		return apperrors.NewValidationError("email", "email is required")
	case req.Password == "":
		return apperrors.NewValidationError("password", "password is required")
	}

	existing, err := s.repoUser.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.ErrorWithContext(ctx, "Failed to check existing user").
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		field := "email"
		if existing.Username == username {
			field = "username"
		}
		logger.InfoWithContext(ctx, "Registration rejected, identifier taken").
			String("field", field).
			Log()
		s.metrics.AuthEvent(metrics.EventRegister, apperrors.CodeAlreadyExists)
		return apperrors.NewAlreadyExists(field)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     model.RoleUser,
	}

	if err := s.repoUser.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration; the index names the field.
		if field, ok := repository.DuplicateField(err); ok {
			s.metrics.AuthEvent(metrics.EventRegister, apperrors.CodeAlreadyExists)
			return apperrors.NewAlreadyExists(field)
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered successfully").
		Uint("new_user_id", user.ID).
		Log()
	s.metrics.AuthEvent(metrics.EventRegister, "success")

	return nil
}

// Login checks credentials and issues an access and refresh pair.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "Login")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("email", "email and password are required")
	}

	user, err := s.repoUser.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.LogAuth(email, "login", false)
			s.metrics.AuthEvent(metrics.EventLogin, apperrors.CodeInvalidCredentials)
			return nil, apperrors.ErrInvalidEmail
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Compare(user.Password, req.Password) {
		logger.LogAuth(email, "login", false)
		s.metrics.AuthEvent(metrics.EventLogin, apperrors.CodeInvalidCredentials)
		return nil, apperrors.ErrInvalidPassword
	}

	pair, err := s.issuePair(user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue tokens").
			Err(err).
			Log()
		return nil, err
	}

	logger.LogAuth(email, "login", true)
	s.metrics.AuthEvent(metrics.EventLogin, "success")

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         ToPublicUser(user),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The old access token
// does not need to be valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	ctx = ctxutil.Tag(ctx, "service", "Refresh")

	if refreshToken == "" {
		s.metrics.AuthEvent(metrics.EventRefresh, apperrors.CodeInvalidRefreshToken)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	verified, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrServerMisconfigured) {
			return nil, err
		}
		logger.InfoWithContext(ctx, "Refresh token rejected").
			Err(err).
			Log()
		s.metrics.AuthEvent(metrics.EventRefresh, apperrors.CodeInvalidRefreshToken)
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	user, err := s.repoUser.GetByID(ctx, verified.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.AuthEvent(metrics.EventRefresh, apperrors.CodeUnauthenticated)
			return nil, apperrors.ErrUserNotFoundForAuth
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent(metrics.EventRefresh, "success")
	return pair, nil
}

// ResolveIdentity verifies an access token and loads its subject. A valid
// signature for a user that no longer exists is still Unauthenticated.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "service", "ResolveIdentity")

	if !s.tokens.AccessConfigured() {
		logger.ErrorWithContext(ctx, "Access token secret is not configured").Log()
		return nil, apperrors.ErrServerMisconfigured
	}

	verified, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repoUser.GetByID(ctx, verified.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFoundForAuth
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return user, nil
}

// AccessTokenTTL is how long the session cookie should live.
func (s *AuthService) AccessTokenTTL() int {
	return int(s.tokens.AccessTTL().Seconds())
}

func (s *AuthService) issuePair(user *model.User) (*dto.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, asDomainError(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, asDomainError(err)
	}
	return &dto.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ToPublicUser is the outward projection used by login.
func ToPublicUser(user *model.User) dto.PublicUser {
	return dto.PublicUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}

// asDomainError keeps domain errors as they are and wraps anything else as
// an internal error.
func asDomainError(err error) error {
	if apperrors.IsDomainError(err) {
		return err
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}
