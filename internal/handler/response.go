package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Payphone-Digital/bizsite/internal/constants"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"github.com/Payphone-Digital/bizsite/pkg/validation"
	"github.com/gin-gonic/gin"
)

// respondError writes err as the coded error payload. Errors that are not
// domain errors are logged and reported as a generic internal error.
func respondError(c *gin.Context, ctx context.Context, err error) {
	status := apperrors.ToHTTPStatus(err)

	de := apperrors.GetDomainError(err)
	if de == nil || status >= http.StatusInternalServerError {
		logger.ErrorWithContext(ctx, "Request failed").
			Int("http_status", status).
			Err(err).
			Log()
	}
	if de == nil {
		c.JSON(status, constants.BuildCodedErrorResponse(constants.MsgInternalError, apperrors.CodeInternal, "", nil))
		return
	}

	c.JSON(status, constants.BuildCodedErrorResponse(de.Message, de.Code, de.Field, nil))
}

// bindJSON decodes the body into req and answers 400 when it does not
// decode or fails its binding rules.
func bindJSON(c *gin.Context, ctx context.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	logger.WarnWithContext(ctx, "Invalid request body").
		Err(err).
		Log()

	if fieldErrors, ok := validation.Translate(err); ok && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		c.JSON(http.StatusBadRequest, constants.BuildCodedErrorResponse(
			first.Message, apperrors.CodeValidation, first.Field, fieldErrors,
		))
		return false
	}

	message := "invalid request format"
	if errors.Is(err, io.EOF) {
		message = "request body is required"
	}
	c.JSON(http.StatusBadRequest, constants.BuildCodedErrorResponse(message, apperrors.CodeValidation, "", nil))
	return false
}

// uintParam reads a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apperrors.NewValidationError(name, "invalid "+name)
	}
	return uint(v), nil
}
