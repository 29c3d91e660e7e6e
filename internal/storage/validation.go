package storage

import (
	"context"
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("value cannot be empty")
)

// validateContext checks that a context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString checks that a string value is not empty.
func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s: %w", name, ErrEmptyString)
	}
	return nil
}

// validateID checks that a numeric identifier is positive.
func validateID(id int64, name string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, id)
	}
	return nil
}
