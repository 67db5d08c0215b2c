package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrMemberNotFound     = errors.New("team member not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEndpointGone marks a push endpoint the push service confirmed dead
	// (HTTP 404/410). It triggers subscription cleanup, not a delivery failure.
	ErrEndpointGone = errors.New("push endpoint gone")

	// ErrReasonRequired is returned when an unavailable response carries no reason.
	ErrReasonRequired = errors.New("a reason is required when unavailable")

	// ErrInvalidStatus is returned for an unknown availability status.
	ErrInvalidStatus = errors.New("invalid availability status")
)
