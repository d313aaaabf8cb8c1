// Package errors defines typed errors shared across the lookup pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ThrottledError indicates Douban answered 403 even after the retry wait.
type ThrottledError struct {
	URL string
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("douban throttled request to %s", e.URL)
}

// NewThrottledError creates a ThrottledError for the given URL.
func NewThrottledError(url string) *ThrottledError {
	return &ThrottledError{URL: url}
}

// IsThrottled reports whether err is a ThrottledError (even when wrapped).
func IsThrottled(err error) bool {
	var te *ThrottledError
	return errors.As(err, &te)
}
