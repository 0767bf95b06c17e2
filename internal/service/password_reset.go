package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/mailer"
	"github.com/Payphone-Digital/bizsite/pkg/metrics"
	"gorm.io/gorm"
)

// PasswordResetService moves a user between no pending reset and a pending
// reset (token, expiry). Every transition writes both fields in one
// statement, so one is never stored without the other.
type PasswordResetService struct {
	repoUser *repository.UserRepository
	hasher   PasswordHasher
	sender   mailer.Sender
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewPasswordResetService(repo *repository.UserRepository, hasher PasswordHasher, sender mailer.Sender, m *metrics.Metrics) *PasswordResetService {
	return &PasswordResetService{
		repoUser: repo,
		hasher:   hasher,
		sender:   sender,
		metrics:  m,
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Used by tests to simulate expiry.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

func (s *PasswordResetService) clock() time.Time {
	return s.now().UTC()
}

// Request stores a fresh token for the account and emails it. The returned
// message is identical whether or not the account exists. A failed send
// clears the token again and reports ErrEmailDeliveryFailed.
func (s *PasswordResetService) Request(ctx context.Context, email string) (string, error) {
	ctx = ctxutil.Tag(ctx, "service", "RequestPasswordReset")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperrors.NewValidationError("email", "email is required")
	}

	user, err := s.repoUser.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Password reset requested for unknown email").Log()
			s.metrics.AuthEvent(metrics.EventResetRequest, "unknown_email")
			return constants.MsgResetRequested, nil
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := generateResetToken()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	expires := s.clock().Add(constants.ResetTokenTTL)

	if err := s.repoUser.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sender.SendPasswordReset(ctx, user.Email, token, user.DisplayName()); err != nil {
		logger.ErrorWithContext(ctx, "Reset email failed, rolling back pending reset").
			Uint("target_id", user.ID).
			Err(err).
			Log()
		if clearErr := s.repoUser.ClearResetToken(ctx, user.ID, token); clearErr != nil {
			logger.ErrorWithContext(ctx, "Failed to roll back pending reset").
				Uint("target_id", user.ID).
				Err(clearErr).
				Log()
		}
		s.metrics.AuthEvent(metrics.EventResetRequest, apperrors.CodeEmailDelivery)
		return "", apperrors.WrapError(apperrors.ErrEmailDeliveryFailed, err)
	}

	logger.InfoWithContext(ctx, "Password reset email sent").
		Uint("target_id", user.ID).
		Log()
	s.metrics.AuthEvent(metrics.EventResetRequest, "success")

	return constants.MsgResetRequested, nil
}

// Validate reports whether token can still be consumed. It never changes
// state.
func (s *PasswordResetService) Validate(ctx context.Context, token string) (*dto.ResetTokenStatus, error) {
	ctx = ctxutil.Tag(ctx, "service", "ValidateResetToken")

	user, err := s.lookup(ctx, token)
	if err != nil {
		s.metrics.AuthEvent(metrics.EventResetValidate, apperrors.GetErrorCode(err))
		return nil, err
	}

	s.metrics.AuthEvent(metrics.EventResetValidate, "success")
	return &dto.ResetTokenStatus{Valid: true, Email: user.Email}, nil
}

// Consume sets a new password and clears the pending reset in the same
// update. A second call with the same token fails as invalid. The
// confirmation email is best effort.
func (s *PasswordResetService) Consume(ctx context.Context, token, newPassword string) (*dto.ResetPasswordResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "ConsumeResetToken")

	user, err := s.lookup(ctx, token)
	if err != nil {
		s.metrics.AuthEvent(metrics.EventResetConsume, apperrors.GetErrorCode(err))
		return nil, err
	}

	if len(newPassword) < constants.MinPasswordLength {
		s.metrics.AuthEvent(metrics.EventResetConsume, apperrors.CodeValidation)
		return nil, apperrors.NewValidationError("newPassword", "password must be at least 6 characters")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	done, err := s.repoUser.CompleteReset(ctx, user.ID, token, hashed, s.clock())
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !done {
		// Consumed, replaced or expired between lookup and update.
		_, err := s.lookup(ctx, token)
		if err == nil {
			err = apperrors.ErrResetTokenInvalid
		}
		s.metrics.AuthEvent(metrics.EventResetConsume, apperrors.GetErrorCode(err))
		return nil, err
	}

	logger.InfoWithContext(ctx, "Password reset completed").
		Uint("target_id", user.ID).
		Log()
	s.metrics.AuthEvent(metrics.EventResetConsume, "success")

	if err := s.sender.SendPasswordChanged(ctx, user.Email, user.DisplayName()); err != nil {
		logger.WarnWithContext(ctx, "Password change confirmation not sent").
			Uint("target_id", user.ID).
			Err(err).
			Log()
	}

	return &dto.ResetPasswordResponse{
		Success: true,
		Message: constants.MsgResetCompleted,
		Email:   user.Email,
	}, nil
}

// PurgeStale clears reset state that expired more than grace ago. Tokens
// inside the grace window are kept so Validate can still say Expired.
func (s *PasswordResetService) PurgeStale(ctx context.Context, grace time.Duration) (int64, error) {
	ctx = ctxutil.Tag(ctx, "service", "PurgeStaleResetTokens")

	n, err := s.repoUser.PurgeStaleResetTokens(ctx, s.clock().Add(-grace))
	if err != nil {
		return 0, err
	}
	s.metrics.ResetPurged(n)
	return n, nil
}

// lookup finds the user holding a live token. When none matches it checks
// again ignoring expiry to tell an expired token from an unknown one.
func (s *PasswordResetService) lookup(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrResetTokenInvalid
	}

	user, err := s.repoUser.FindByActiveResetToken(ctx, token, s.clock())
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	_, err = s.repoUser.FindByResetToken(ctx, token)
	switch {
	case err == nil:
		logger.InfoWithContext(ctx, "Reset token expired").Log()
		return nil, apperrors.ErrResetTokenExpired
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrResetTokenInvalid
	default:
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
}

func generateResetToken() (string, error) {
	b := make([]byte, constants.ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
