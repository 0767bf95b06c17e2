package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes. Clients branch on these, not on Message.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeResetTokenInvalid   = "RESET_TOKEN_INVALID"
	CodeResetTokenExpired   = "RESET_TOKEN_EXPIRED"
	CodeEmailDelivery       = "EMAIL_DELIVERY_FAILED"
	CodeServerMisconfigured = "SERVER_MISCONFIGURED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Field   string // offending input field, when the error is about one
	Err     error  // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code, so wrapped
// copies and message variants still match their predefined sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Field:   domainErr.Field,
		Err:     err,
	}
}

// NewAlreadyExists names the field whose value is already taken.
func NewAlreadyExists(field string) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyExists,
		Message: field + " already exists",
		Field:   field,
	}
}

// NewValidationError reports a missing or malformed input field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// Predefined domain errors
var (
	ErrValidation = NewDomainError(CodeValidation, "validation failed")

	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "resource already exists")

	// Login deliberately keeps distinct messages for unknown email and wrong
	// password; both carry the same code.
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "invalid credentials")
	ErrInvalidEmail       = NewDomainError(CodeInvalidCredentials, "invalid email")
	ErrInvalidPassword    = NewDomainError(CodeInvalidCredentials, "invalid password")
	ErrIncorrectPassword  = NewDomainError(CodeInvalidCredentials, "current password is incorrect")

	ErrUnauthenticated     = NewDomainError(CodeUnauthenticated, "authentication required")
	ErrNoToken             = NewDomainError(CodeUnauthenticated, "no token provided")
	ErrUserNotFoundForAuth = NewDomainError(CodeUnauthenticated, "user not found")
	ErrTokenVerification   = NewDomainError(CodeUnauthenticated, "token verification failed")
	ErrInvalidToken        = NewDomainError(CodeTokenInvalid, "invalid token")
	ErrTokenExpired        = NewDomainError(CodeTokenExpired, "token expired")
	ErrInvalidRefreshToken = NewDomainError(CodeInvalidRefreshToken, "invalid refresh token")

	ErrForbidden = NewDomainError(CodeForbidden, "insufficient permissions")
	ErrNotOwner  = NewDomainError(CodeForbidden, "resource belongs to another user")

	ErrNotFound        = NewDomainError(CodeNotFound, "resource not found")
	ErrUserNotFound    = NewDomainError(CodeNotFound, "user not found")
	ErrContentNotFound = NewDomainError(CodeNotFound, "content not found")
	ErrProductNotFound = NewDomainError(CodeNotFound, "product not found")
	ErrEnquiryNotFound = NewDomainError(CodeNotFound, "enquiry not found")
	ErrWishlistMissing = NewDomainError(CodeNotFound, "product is not in wishlist")

	ErrResetTokenInvalid = NewDomainError(CodeResetTokenInvalid, "password reset token is invalid")
	ErrResetTokenExpired = NewDomainError(CodeResetTokenExpired, "password reset token has expired")

	ErrEmailDeliveryFailed = NewDomainError(CodeEmailDelivery, "failed to send password reset email")

	ErrServerMisconfigured = NewDomainError(CodeServerMisconfigured, "server authentication is not configured")

	ErrRateLimited = NewDomainError(CodeRateLimited, "too many requests")

	ErrInternal = NewDomainError(CodeInternal, "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// GetErrorCode returns the domain code, or CodeInternal for foreign errors.
func GetErrorCode(err error) string {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case CodeValidation, CodeResetTokenInvalid, CodeResetTokenExpired:
		return http.StatusBadRequest

	case CodeInvalidCredentials, CodeUnauthenticated, CodeTokenInvalid,
		CodeTokenExpired, CodeInvalidRefreshToken:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	case CodeAlreadyExists:
		return http.StatusConflict

	case CodeRateLimited:
		return http.StatusTooManyRequests

	case CodeEmailDelivery:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
