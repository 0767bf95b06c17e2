package service

import (
	"context"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
)

type ProductService struct {
	repo *repository.ProductRepository
}

func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) List(ctx context.Context, page constants.PaginationParams, filter dto.ProductFilter) ([]dto.ProductResponse, int64, int, error) {
	ctx = ctxutil.Tag(ctx, "service", "ProductList")

	products, total, err := s.repo.ListActive(ctx, page.Limit, page.Offset, filter)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		item := ToProductResponse(&products[i])
		item.Description = ""
		item.Specs = nil
		res = append(res, item)
	}
	return res, total, page.PageTotal(total), nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slugValue string) (*dto.ProductResponse, error) {
	product, err := s.repo.GetBySlug(ctx, slugValue)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrProductNotFound)
	}
	res := ToProductResponse(product)
	return &res, nil
}

func ToProductResponse(p *model.Product) dto.ProductResponse {
	res := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category,
		Summary:     p.Summary,
		Description: p.Description,
		Specs:       map[string]any(p.Specs),
		Images:      []string(p.Images),
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
	}
	if res.Images == nil {
		res.Images = []string{}
	}
	return res
}
