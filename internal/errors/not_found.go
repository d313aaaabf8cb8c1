package errors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a lookup produced no usable results.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no results for %q", e.Query)
}

// NewNotFoundError creates a NotFoundError for the given query.
func NewNotFoundError(query string) *NotFoundError {
	return &NotFoundError{Query: query}
}

// IsNotFound reports whether err is a NotFoundError (even when wrapped).
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
