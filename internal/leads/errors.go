package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("either email or phone is required")

	// ErrInvalidZip is returned for a ZIP that is not 5 or 9 digits
	ErrInvalidZip = errors.New("zip must be a 5-digit US ZIP code")
)
