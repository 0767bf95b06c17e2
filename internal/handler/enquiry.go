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

type EnquiryHandler struct {
	enquiryService *service.EnquiryService
}

func NewEnquiryHandler(enquiryService *service.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiryService}
}

// Create accepts anonymous enquiries. When the optional gate attached a
// caller the enquiry is recorded as theirs.
func (h *EnquiryHandler) Create(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "CreateEnquiry")

	var req dto.CreateEnquiryRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	caller, _ := middleware.Identity(c)
	enquiry, err := h.enquiryService.Create(ctx, caller, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	logger.InfoWithContext(ctx, "Enquiry received").
		Uint("enquiry_id", enquiry.ID).
		Bool("authenticated", caller != nil).
		Log()

	c.JSON(http.StatusCreated, enquiry)
}

func (h *EnquiryHandler) List(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ListEnquiries")

	pagination := constants.ParsePaginationParams(c)
	filter := dto.EnquiryFilter{Status: c.Query("status")}

	res, total, pageTotal, err := h.enquiryService.List(ctx, pagination, filter)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}

func (h *EnquiryHandler) ListMine(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ListMyEnquiries")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	pagination := constants.ParsePaginationParams(c)
	res, total, pageTotal, err := h.enquiryService.ListMine(ctx, caller, pagination)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}

func (h *EnquiryHandler) Get(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "GetEnquiry")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	enquiry, err := h.enquiryService.Get(ctx, caller, id)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, enquiry)
}

func (h *EnquiryHandler) Update(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "UpdateEnquiry")

	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	var req dto.UpdateEnquiryRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	enquiry, err := h.enquiryService.UpdateStatus(ctx, id, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, enquiry)
}
