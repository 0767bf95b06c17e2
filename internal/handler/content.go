package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	"github.com/Payphone-Digital/bizsite/internal/dto"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/internal/middleware"
	"github.com/Payphone-Digital/bizsite/internal/service"
	ctxutil "github.com/Payphone-Digital/bizsite/pkg/context"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService *service.ContentService
}

func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// ListPublished is the public listing. Drafts are never included.
func (h *ContentHandler) ListPublished(c *gin.Context) {
	h.list(c, "ListPublished", true)
}

// ListAll is the admin listing, optionally filtered by status.
func (h *ContentHandler) ListAll(c *gin.Context) {
	h.list(c, "ListAll", false)
}

func (h *ContentHandler) list(c *gin.Context, function string, publishedOnly bool) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", function)

	pagination := constants.ParsePaginationParams(c)
	filter := dto.ContentFilter{
		Type:          c.Query("type"),
		Tag:           c.Query("tag"),
		Search:        c.Query(constants.QueryParamSearch),
		PublishedOnly: publishedOnly,
	}
	if !publishedOnly {
		filter.Status = c.Query("status")
	}

	res, total, pageTotal, err := h.contentService.List(ctx, pagination, filter)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}

func (h *ContentHandler) GetBySlug(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "GetContentBySlug")

	content, err := h.contentService.GetPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "GetContentByID")

	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	content, err := h.contentService.GetByID(ctx, id)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) Create(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "CreateContent")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.ContentRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	content, err := h.contentService.Create(ctx, caller.ID, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	logger.InfoWithContext(ctx, "Content created").
		Uint("content_id", content.ID).
		String("slug", content.Slug).
		Log()

	c.JSON(http.StatusCreated, content)
}

func (h *ContentHandler) Update(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "UpdateContent")

	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	var req dto.ContentRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	content, err := h.contentService.Update(ctx, id, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "DeleteContent")

	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	if err := h.contentService.Delete(ctx, id); err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}
