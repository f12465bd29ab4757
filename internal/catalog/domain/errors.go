package domain

import "errors"

var (
	// ErrNotFound indicates the referenced catalog entity does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateSlug indicates a slug uniqueness violation.
	ErrDuplicateSlug = errors.New("slug already used")
	// ErrLimitReached indicates the tutor's license does not allow more
	// content of the requested kind.
	ErrLimitReached = errors.New("license limit reached")
)
