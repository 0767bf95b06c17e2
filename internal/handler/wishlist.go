package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/Payphone-Digital/bizsite/internal/service"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/gin-gonic/gin"
)

// WishlistHandler only ever touches the caller's own wishlist. There is no
// route that takes another user's id.
type WishlistHandler struct {
	wishlistService *service.WishlistService
}

func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) List(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ListWishlist")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	items, err := h.wishlistService.List(ctx, caller.ID)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{constants.ResponseFieldData: items})
}

func (h *WishlistHandler) Add(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "AddWishlistItem")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.AddWishlistRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	item, err := h.wishlistService.Add(ctx, caller.ID, req.ProductID)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) Contains(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "WishlistContains")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	productID, err := uintParam(c, "productId")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	status, err := h.wishlistService.Contains(ctx, caller.ID, productID)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "RemoveWishlistItem")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	productID, err := uintParam(c, "productId")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	if err := h.wishlistService.Remove(ctx, caller.ID, productID); err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}
