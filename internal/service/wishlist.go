package service

import (
	"context"

	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/internal/repository"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
)

// WishlistService operates on the caller's own wishlist only; every method
// takes the owner id from the resolved identity.
type WishlistService struct {
	repo     *repository.WishlistRepository
	products *repository.ProductRepository
}

func NewWishlistService(repo *repository.WishlistRepository, products *repository.ProductRepository) *WishlistService {
	return &WishlistService{repo: repo, products: products}
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]dto.WishlistItemResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.WishlistItemResponse, 0, len(items))
	for i := range items {
		res = append(res, toWishlistItemResponse(&items[i]))
	}
	return res, nil
}

// Add rejects a pair that is already present with AlreadyExists("product").
func (s *WishlistService) Add(ctx context.Context, userID, productID uint) (*dto.WishlistItemResponse, error) {
	ctx = ctxutil.Tag(ctx, "service", "WishlistAdd")

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, apperrors.ErrProductNotFound)
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.Add(ctx, item); err != nil {
		if _, ok := repository.DuplicateField(err); ok {
			return nil, apperrors.NewAlreadyExists("product")
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	item.Product = product

	logger.InfoWithContext(ctx, "Product added to wishlist").
		Uint("product_id", productID).
		Log()

	res := toWishlistItemResponse(item)
	return &res, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return notFoundOr(err, apperrors.ErrWishlistMissing)
	}
	return nil
}

func (s *WishlistService) Contains(ctx context.Context, userID, productID uint) (*dto.WishlistStatus, error) {
	ok, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &dto.WishlistStatus{ProductID: productID, InWishlist: ok}, nil
}

func toWishlistItemResponse(item *model.WishlistItem) dto.WishlistItemResponse {
	res := dto.WishlistItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		AddedAt:   item.CreatedAt,
	}
	if item.Product != nil {
		res.Product = ToProductResponse(item.Product)
	}
	return res
}
