package middleware

import (
	"github.com/Payphone-Digital/bizsite/internal/constants"
	apperrors "github.com/Payphone-Digital/bizsite/internal/errors"
	"github.com/gin-gonic/gin"
)

// abortWithError writes the coded error payload and stops the chain.
func abortWithError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	message := apperrors.GetErrorMessage(err)
	field := ""
	if de := apperrors.GetDomainError(err); de != nil {
		field = de.Field
	} else {
		message = constants.MsgInternalError
	}
	c.AbortWithStatusJSON(status, constants.BuildCodedErrorResponse(message, apperrors.GetErrorCode(err), field, nil))
}
