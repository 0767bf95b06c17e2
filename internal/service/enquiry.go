package service

import (
	"context"
	"strings"
	"time"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
)

type EnquiryService struct {
	repo     *repository.EnquiryRepository
	products *repository.ProductRepository
	now      func() time.Time
}

func NewEnquiryService(repo *repository.EnquiryRepository, products *repository.ProductRepository) *EnquiryService {
	return &EnquiryService{repo: repo, products: products, now: time.Now}
}

// Create stores an enquiry. caller is nil for anonymous senders; when set,
// the enquiry is attached to that user.
func (s *EnquiryService) Create(ctx context.Context, caller *model.User, req dto.CreateEnquiryRequest) (*dto.EnquiryResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "EnquiryCreate")

	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.NewValidationError("message", "message is required")
	}

	if req.ProductID != nil {
		if _, err := s.products.GetByID(ctx, *req.ProductID); err != nil {
			return nil, notFoundOr(err, apperrors.ErrProductNotFound)
		}
	}

	enquiry := &model.Enquiry{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Company:   req.Company,
		Subject:   req.Subject,
		Message:   req.Message,
		ProductID: req.ProductID,
		Status:    model.EnquiryStatusNew,
	}
	if caller != nil {
		id := caller.ID
		enquiry.UserID = &id
	}

	if err := s.repo.Create(ctx, enquiry); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := toEnquiryResponse(enquiry)
	return &res, nil
}

// List returns every enquiry. Admin only.
func (s *EnquiryService) List(ctx context.Context, page constants.PaginationParams, filter dto.EnquiryFilter) ([]dto.EnquiryResponse, int64, int, error) {
	ctx = ctxutil.Tag(ctx, "service", "EnquiryList")

	enquiries, total, err := s.repo.List(ctx, page.Limit, page.Offset, filter)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.EnquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		res = append(res, toEnquiryResponse(&enquiries[i]))
	}
	return res, total, page.PageTotal(total), nil
}

// ListMine returns the caller's own enquiries.
func (s *EnquiryService) ListMine(ctx context.Context, caller *model.User, page constants.PaginationParams) ([]dto.EnquiryResponse, int64, int, error) {
	id := caller.ID
	return s.List(ctx, page, dto.EnquiryFilter{UserID: &id})
}

// Get allows admins and the owner; anyone else gets Forbidden.
func (s *EnquiryService) Get(ctx context.Context, caller *model.User, id uint) (*dto.EnquiryResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "EnquiryGet")

	enquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrEnquiryNotFound)
	}

	if !caller.Role.Satisfies(model.RoleAdmin) && !enquiry.OwnedBy(caller.ID) {
		logger.WarnWithContext(ctx, "Enquiry access denied").
			Uint("enquiry_id", id).
			Log()
		return nil, apperrors.ErrNotOwner
	}

	res := toEnquiryResponse(enquiry)
	return &res, nil
}

// UpdateStatus changes status and response. Admin only.
func (s *EnquiryService) UpdateStatus(ctx context.Context, id uint, req dto.UpdateEnquiryRequest) (*dto.EnquiryResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "EnquiryUpdateStatus")

	if req.Status == "" && req.Response == nil {
		return nil, apperrors.NewValidationError("status", "status or response is required")
	}

	enquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrEnquiryNotFound)
	}

	if req.Status != "" {
		status := model.EnquiryStatus(req.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status", "status must be one of: new in_progress responded closed")
		}
		enquiry.Status = status
	}
	if req.Response != nil {
		enquiry.Response = strings.TrimSpace(*req.Response)
		if enquiry.Response != "" {
			now := s.now().UTC()
			enquiry.RespondedAt = &now
			if req.Status == "" {
				enquiry.Status = model.EnquiryStatusResponded
			}
		}
	}

	if err := s.repo.UpdateStatus(ctx, enquiry); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := toEnquiryResponse(enquiry)
	return &res, nil
}

func toEnquiryResponse(e *model.Enquiry) dto.EnquiryResponse {
	res := dto.EnquiryResponse{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		Company:     e.Company,
		Subject:     e.Subject,
		Message:     e.Message,
		UserID:      e.UserID,
		ProductID:   e.ProductID,
		Status:      string(e.Status),
		Response:    e.Response,
		RespondedAt: e.RespondedAt,
		CreatedAt:   e.CreatedAt,
	}
	if e.Product != nil {
		res.ProductName = e.Product.Name
	}
	return res
}
