package repository

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListActive returns catalog entries visible to the public.
func (r *ProductRepository) ListActive(ctx context.Context, limit, offset int, filter dto.ProductFilter) ([]model.Product, int64, error) {
	ctx = ctxutil.Tag(ctx, "repository", "ProductList")

	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(summary) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count products").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("featured DESC").Order("name").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch products").
			Err(err).
			Log()
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("slug = ? AND active = ?", slug, true).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("active = ?", true).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
