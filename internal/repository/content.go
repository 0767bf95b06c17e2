package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) List(ctx context.Context, limit, offset int, filter dto.ContentFilter) ([]model.Content, int64, error) {
	ctx = ctxutil.Tag(ctx, "repository", "ContentList")

	start := time.Now()
	var contents []model.Content
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Content{})

	if filter.PublishedOnly {
		query = query.Where("status = ?", model.ContentStatusPublished)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Tag != "" {
		query = r.whereTag(query, filter.Tag)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count contents").
			Err(err).
			Log()
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.PublishedOnly {
		order = "published_at DESC"
	}

	if err := query.Preload("Author").Order(order).Order("id DESC").Limit(limit).Offset(offset).Find(&contents).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch contents").
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Contents retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(contents)).
		Bool("published_only", filter.PublishedOnly).
		Duration(time.Since(start)).
		Log()

	return contents, total, nil
}

// whereTag matches contents whose JSON tag array holds tag. Postgres stores
// jsonb and gets containment; other dialects match the quoted element text.
func (r *ContentRepository) whereTag(query *gorm.DB, tag string) *gorm.DB {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if r.db.Dialector.Name() == "postgres" {
		encoded, _ := json.Marshal([]string{tag})
		return query.Where("tags @> ?::jsonb", string(encoded))
	}
	return query.Where("tags LIKE ?", "%\""+tag+"\"%")
}

func (r *ContentRepository) GetByID(ctx context.Context, id uint) (*model.Content, error) {
	var content model.Content
	if err := r.db.WithContext(ctx).Preload("Author").First(&content, id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *ContentRepository) GetBySlug(ctx context.Context, slug string) (*model.Content, error) {
	var content model.Content
	if err := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

// SlugExists reports whether slug is taken by a row other than excludeID.
func (r *ContentRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&model.Content{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ContentRepository) Create(ctx context.Context, content *model.Content) error {
	ctx = ctxutil.Tag(ctx, "repository", "ContentCreate")

	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		err = asDuplicate(err)
		logger.ErrorWithContext(ctx, "Failed to create content").
			String("slug", content.Slug).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Content created successfully").
		Uint("content_id", content.ID).
		String("slug", content.Slug).
		Log()
	return nil
}

func (r *ContentRepository) Update(ctx context.Context, content *model.Content) error {
	ctx = ctxutil.Tag(ctx, "repository", "ContentUpdate")

	err := r.db.WithContext(ctx).Model(content).Select(
		"title", "slug", "type", "excerpt", "body", "cover_image", "tags", "status", "published_at",
	).Updates(content).Error
	if err != nil {
		err = asDuplicate(err)
		logger.ErrorWithContext(ctx, "Failed to update content").
			Uint("content_id", content.ID).
			Err(err).
			Log()
		return err
	}
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.Tag(ctx, "repository", "ContentDelete")

	result := r.db.WithContext(ctx).Delete(&model.Content{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete content").
			Uint("content_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Content deleted successfully").
		Uint("content_id", id).
		Log()
	return nil
}
