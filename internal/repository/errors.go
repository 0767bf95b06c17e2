package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// DuplicateError reports a unique-index violation and the input field it
// belongs to.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field + ": " + e.Err.Error()
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// uniqueFields maps index names (postgres) and table.column pairs (sqlite)
// to the field name reported to clients.
var uniqueFields = []struct {
	pattern string
	field   string
}{
	{"idx_users_username", "username"},
	{"users.username", "username"},
	{"idx_users_email", "email"},
	{"users.email", "email"},
	{"idx_wishlist_user_product", "product"},
	{"wishlist_items.", "product"},
	{"idx_contents_slug", "slug"},
	{"contents.slug", "slug"},
	{"idx_products_slug", "slug"},
	{"products.slug", "slug"},
}

// asDuplicate converts a store unique violation into *DuplicateError and
// passes every other error through unchanged.
func asDuplicate(err error) error {
	if err == nil {
		return nil
	}

	var source string
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		source = pgErr.ConstraintName + " " + pgErr.Detail
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		source = err.Error()
	default:
		return err
	}

	for _, u := range uniqueFields {
		if strings.Contains(source, u.pattern) {
			return &DuplicateError{Field: u.field, Err: err}
		}
	}
	return &DuplicateError{Field: "unknown", Err: err}
}

// DuplicateField returns the conflicting field when err is a unique violation.
func DuplicateField(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}
