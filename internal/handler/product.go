package handler

import (
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	"github.com/Payphone-Digital/bizsite/internal/service"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ListProducts")

	pagination := constants.ParsePaginationParams(c)
	filter := dto.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query(constants.QueryParamSearch),
	}
	if raw := c.Query("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filter.Featured = &featured
		}
	}

	res, total, pageTotal, err := h.productService.List(ctx, pagination, filter)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}

func (h *ProductHandler) GetBySlug(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "GetProductBySlug")

	product, err := h.productService.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, product)
}
