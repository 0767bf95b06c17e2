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

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{userService: service}
}

func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "Me")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	user, err := h.userService.GetByID(ctx, caller.ID)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "UpdateMe")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(ctx, caller.ID, req)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "ChangePassword")

	caller, ok := middleware.Identity(c)
	if !ok {
		respondError(c, ctx, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, ctx, &req) {
		return
	}

	if err := h.userService.ChangePassword(ctx, caller.ID, req); err != nil {
		respondError(c, ctx, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgPasswordChanged))
}

// GetAll lists users for administrators.
func (h *UserHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.Tag(c.Request.Context(), "handler", "GetAll")

	pagination := constants.ParsePaginationParams(c)
	filter := dto.UserFilter{
		Search: c.DefaultQuery(constants.QueryParamSearch, constants.DefaultSearch),
		Role:   c.Query("role"),
	}

	res, total, pageTotal, err := h.userService.GetAll(ctx, pagination, filter)
	if err != nil {
		respondError(c, ctx, err)
		return
	}

	logger.InfoWithContext(ctx, "Users fetched successfully").
		Int("page", pagination.Page).
		Int("limit", pagination.Limit).
		Int64("total", total).
		Int("returned_count", len(res)).
		Log()

	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, res))
}
