package domain

import "errors"

// Validation errors. They are returned wrapped with the offending value, so
// compare with errors.Is or IsValidation.
var (
	ErrInvalidArea        = errors.New("invalid area identifier")
	ErrInvalidCount       = errors.New("invalid count")
	ErrInvalidPriority    = errors.New("invalid demand priority")
	ErrInvalidTargetRatio = errors.New("target ratio must be a positive finite number")
	ErrEmptyRegion        = errors.New("region contains no areas")
)

// ErrNotFound reports that no analysis is stored for an area.
var ErrNotFound = errors.New("demand analysis not found")

// IsValidation reports whether err was caused by bad input rather than a
// missing record or an infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidArea) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrInvalidPriority) ||
		errors.Is(err, ErrInvalidTargetRatio) ||
		errors.Is(err, ErrEmptyRegion)
}
