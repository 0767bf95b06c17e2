package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewValidationError("email", "email is required"), http.StatusBadRequest},
		{ErrResetTokenInvalid, http.StatusBadRequest},
		{ErrResetTokenExpired, http.StatusBadRequest},
		{ErrInvalidEmail, http.StatusUnauthorized},
		{ErrNoToken, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrInvalidRefreshToken, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotOwner, http.StatusForbidden},
		{ErrContentNotFound, http.StatusNotFound},
		{NewAlreadyExists("username"), http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrEmailDeliveryFailed, http.StatusBadGateway},
		{ErrServerMisconfigured, http.StatusInternalServerError},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
		{fmt.Errorf("handler: %w", ErrForbidden), http.StatusForbidden},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := ToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("ToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	wrapped := WrapError(ErrInvalidToken, errors.New("signature is invalid"))

	if !errors.Is(wrapped, ErrInvalidToken) {
		t.Error("wrapped error should match its sentinel")
	}
	if errors.Is(wrapped, ErrTokenExpired) {
		t.Error("different codes must not match")
	}
	if !errors.Is(ErrInvalidEmail, ErrInvalidCredentials) {
		t.Error("message variants share the credentials code")
	}
	if errors.Unwrap(wrapped).Error() != "signature is invalid" {
		t.Error("Unwrap should return the cause")
	}
}

func TestAccessors(t *testing.T) {
	dup := NewAlreadyExists("email")
	if dup.Field != "email" || dup.Message != "email already exists" {
		t.Errorf("NewAlreadyExists() = %+v", dup)
	}

	foreign := errors.New("boom")
	if GetErrorCode(foreign) != CodeInternal {
		t.Error("foreign errors map to INTERNAL_ERROR")
	}
	if GetDomainError(foreign) != nil {
		t.Error("GetDomainError() should be nil for foreign errors")
	}
	if GetErrorMessage(WrapError(ErrInternal, foreign)) != "internal server error" {
		t.Error("wrapped message should be the domain message")
	}
}
