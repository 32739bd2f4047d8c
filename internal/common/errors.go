// Package common defines shared constants and sentinel errors used across
// the registration core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Validation errors.
	ErrValidation = errors.New("validation error")
)
