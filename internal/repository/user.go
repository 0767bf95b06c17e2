package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "repository", "GetByID")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by ID").
			Uint("lookup_id", id).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully").
		Uint("lookup_id", id).
		Duration(duration).
		Log()

	return &user, nil
}

// GetByEmail finds user by email. Emails are stored lowercased.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved successfully by email").
		Uint("lookup_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

// FindByUsernameOrEmail returns any user holding either identifier.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "repository", "FindByUsernameOrEmail")

	var user model.User
	result := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, strings.ToLower(email)).
		Order("id").
		First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.Tag(ctx, "repository", "Create")

	user.Email = strings.ToLower(user.Email)

	start := time.Now()
	result := r.db.WithContext(ctx).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		err := asDuplicate(result.Error)
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User created successfully").
		Uint("new_user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int, filter dto.UserFilter) ([]model.User, int64, error) {
	ctx = ctxutil.Tag(ctx, "repository", "List")

	start := time.Now()
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR email LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(company) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count users").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("limit", limit).
			Int("offset", offset).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Users retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}

// UpdateProfile writes the given profile columns. Callers build the map from
// a whitelisted request, never from raw input.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = ctxutil.Tag(ctx, "repository", "UpdateProfile")

	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update profile").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Profile updated successfully").
		Uint("target_id", id).
		Int("field_count", len(fields)).
		Log()
	return nil
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	ctx = ctxutil.Tag(ctx, "repository", "UpdatePassword")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hashedPassword)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user password").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "User password updated successfully").
		Uint("target_id", id).
		Log()
	return nil
}

// SetResetToken stores a pending reset. Token and expiry go out in the same
// UPDATE statement.
func (r *UserRepository) SetResetToken(ctx context.Context, id uint, token string, expires time.Time) error {
	ctx = ctxutil.Tag(ctx, "repository", "SetResetToken")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_reset_token":   token,
		"password_reset_expires": expires,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to store reset token").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearResetToken drops the user's pending reset only while it still holds
// token. A newer token stored by a later request is left alone.
func (r *UserRepository) ClearResetToken(ctx context.Context, id uint, token string) error {
	ctx = ctxutil.Tag(ctx, "repository", "ClearResetToken")

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND password_reset_token = ?", id, token).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to clear reset token").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	return nil
}

// FindByActiveResetToken returns the user whose token matches and whose
// expiry is strictly after now.
func (r *UserRepository) FindByActiveResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "repository", "FindByActiveResetToken")

	var user model.User
	result := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", token, now).
		First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// FindByResetToken matches the token regardless of expiry.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	ctx = ctxutil.Tag(ctx, "repository", "FindByResetToken")

	var user model.User
	result := r.db.WithContext(ctx).Where("password_reset_token = ?", token).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// CompleteReset sets the new password hash and clears both reset fields in
// one conditional UPDATE. It reports false when the token was consumed,
// replaced or expired since it was validated.
func (r *UserRepository) CompleteReset(ctx context.Context, id uint, token, hashedPassword string, now time.Time) (bool, error) {
	ctx = ctxutil.Tag(ctx, "repository", "CompleteReset")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND password_reset_token = ? AND password_reset_expires > ?", id, token, now).
		Updates(map[string]interface{}{
			"password":               hashedPassword,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to complete password reset").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return false, result.Error
	}

	logger.DebugWithContext(ctx, "Password reset update executed").
		Uint("target_id", id).
		Int64("rows_affected", result.RowsAffected).
		Duration(time.Since(start)).
		Log()

	return result.RowsAffected == 1, nil
}

// PurgeStaleResetTokens clears reset state whose expiry is before cutoff.
func (r *UserRepository) PurgeStaleResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ctxutil.Tag(ctx, "repository", "PurgeStaleResetTokens")

	start := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("password_reset_expires IS NOT NULL AND password_reset_expires < ?", cutoff).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to purge stale reset tokens").
			Duration(duration).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "Stale reset tokens purged").
		Int64("cleaned_count", result.RowsAffected).
		Duration(duration).
		Log()

	return result.RowsAffected, nil
}
