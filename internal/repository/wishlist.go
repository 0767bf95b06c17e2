package repository

import (
	"context"

	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type WishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID uint) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	return items, err
}

// Add inserts the pair. A second insert for the same pair fails with
// *DuplicateError from the unique index.
func (r *WishlistRepository) Add(ctx context.Context, item *model.WishlistItem) error {
	ctx = ctxutil.Tag(ctx, "repository", "WishlistAdd")

	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		err = asDuplicate(err)
		if _, dup := DuplicateField(err); dup {
			logger.DebugWithContext(ctx, "Wishlist pair already present").
				Uint("product_id", item.ProductID).
				Log()
			return err
		}
		logger.ErrorWithContext(ctx, "Failed to add wishlist item").
			Uint("product_id", item.ProductID).
			Err(err).
			Log()
		return err
	}
	return nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uint) error {
	ctx = ctxutil.Tag(ctx, "repository", "WishlistRemove")

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to remove wishlist item").
			Uint("product_id", productID).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WishlistRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}
