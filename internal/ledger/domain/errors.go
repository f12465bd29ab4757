package domain

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrLicenseNotFound    = errors.New("license not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrAlreadyEnrolled is returned when an enrollment for the
	// (student, course) pair already exists; a retried purchase fails here
	// before any money moves.
	ErrAlreadyEnrolled = errors.New("already enrolled")
	// ErrInsufficientFunds is returned before any mutation when the payer's
	// balance does not cover the price.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
