package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/model"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"gorm.io/gorm"
)

type EnquiryRepository struct {
	db *gorm.DB
}

func NewEnquiryRepository(db *gorm.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

func (r *EnquiryRepository) Create(ctx context.Context, enquiry *model.Enquiry) error {
	ctx = ctxutil.Tag(ctx, "repository", "EnquiryCreate")

	if err := r.db.WithContext(ctx).Create(enquiry).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create enquiry").
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Enquiry created successfully").
		Uint("enquiry_id", enquiry.ID).
		Bool("has_owner", enquiry.UserID != nil).
		Log()
	return nil
}

func (r *EnquiryRepository) List(ctx context.Context, limit, offset int, filter dto.EnquiryFilter) ([]model.Enquiry, int64, error) {
	ctx = ctxutil.Tag(ctx, "repository", "EnquiryList")

	start := time.Now()
	var enquiries []model.Enquiry
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Enquiry{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count enquiries").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Preload("Product").Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&enquiries).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch enquiries").
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Enquiries retrieved successfully").
		Int64("total", total).
		Int("returned_count", len(enquiries)).
		Duration(time.Since(start)).
		Log()

	return enquiries, total, nil
}

func (r *EnquiryRepository) GetByID(ctx context.Context, id uint) (*model.Enquiry, error) {
	var enquiry model.Enquiry
	if err := r.db.WithContext(ctx).Preload("Product").First(&enquiry, id).Error; err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// UpdateStatus writes the admin-controlled fields only.
func (r *EnquiryRepository) UpdateStatus(ctx context.Context, enquiry *model.Enquiry) error {
	ctx = ctxutil.Tag(ctx, "repository", "EnquiryUpdateStatus")

	err := r.db.WithContext(ctx).Model(enquiry).
		Select("status", "response", "responded_at").
		Updates(enquiry).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to update enquiry").
			Uint("enquiry_id", enquiry.ID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Enquiry updated successfully").
		Uint("enquiry_id", enquiry.ID).
		String("status", string(enquiry.Status)).
		Log()
	return nil
}
