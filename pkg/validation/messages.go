package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Custom messages keyed by struct field, then validator tag.
var customValidationMessages = map[string]map[string]string{
	"Email": {
		"required": "email is required",
		"email":    "email is not valid",
	},
	"Password": {
		"required": "password is required",
		"min":      "password must be at least 6 characters",
	},
	"NewPassword": {
		"required": "newPassword is required",
		"min":      "password must be at least 6 characters",
	},
	"Username": {
		"required": "username is required",
	},
}

func CustomMessage(field string) map[string]string {
	return customValidationMessages[field]
}

// FieldError is one failed constraint, already rendered for the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Translate turns validator output into client messages. ok is false when
// err did not come from the validator.
func Translate(err error) (fieldErrors []FieldError, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	for _, e := range verrs {
		msg := ""
		if fieldMessages := CustomMessage(e.Field()); fieldMessages != nil {
			msg = fieldMessages[e.Tag()]
		}
		if msg == "" {
			msg = DefaultMessage(e.Field(), e.Tag(), e.Param())
		}
		fieldErrors = append(fieldErrors, FieldError{Field: lowerFirst(e.Field()), Message: msg})
	}
	return fieldErrors, true
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
