package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type UserService struct {
	repoUser *repository.UserRepository
	hasher   PasswordHasher
}

func NewUserService(repo *repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{repoUser: repo, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "GetByID")

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			Uint("target_id", id).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := ToUserResponse(user)
	return &response, nil
}

func (s *UserService) GetAll(ctx context.Context, page constants.PaginationParams, filter dto.UserFilter) ([]dto.UserResponse, int64, int, error) {
	ctx = ctxutil.Tag(ctx, "service", "GetAll")

	users, total, err := s.repoUser.List(ctx, page.Limit, page.Offset, filter)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get all users").
			Err(err).
			Log()
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		res = append(res, ToUserResponse(&users[i]))
	}

	logger.InfoWithContext(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(res)).
		Log()

	return res, total, page.PageTotal(total), nil
}

// UpdateProfile copies only the whitelisted request fields. The request type
// has no role, email, username, password or reset fields to copy.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "UpdateProfile")

	fields := make(map[string]interface{})
	set := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	set("first_name", req.FirstName)
	set("last_name", req.LastName)
	set("company", req.Company)
	set("phone", req.Phone)
	set("address", req.Address)

	if err := s.repoUser.UpdateProfile(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Profile updated").
		Int("field_count", len(fields)).
		Log()

	return s.GetByID(ctx, id)
}

// ChangePassword requires the current password. Issued tokens stay valid
// until they expire.
func (s *UserService) ChangePassword(ctx context.Context, id uint, req dto.ChangePasswordRequest) error {
	ctx = ctxutil.Tag(ctx, "service", "ChangePassword")

	if len(req.NewPassword) < constants.MinPasswordLength {
		return apperrors.NewValidationError("newPassword", "password must be at least 6 characters")
	}

	user, err := s.repoUser.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Compare(user.Password, req.CurrentPassword) {
		logger.WarnWithContext(ctx, "Current password mismatch").Log()
		return apperrors.ErrIncorrectPassword
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.repoUser.UpdatePassword(ctx, id, hashed); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed").Log()
	return nil
}

func ToUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Company:   user.Company,
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
