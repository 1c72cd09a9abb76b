package service

import "errors"

var (
	// ErrClaimNotFound is returned when no stored claim has the requested ID
	ErrClaimNotFound = errors.New("claim not found")
	// ErrUnknownDisaster is returned when a claim references a disaster the registry does not hold
	ErrUnknownDisaster = errors.New("unknown disaster")
	// ErrMissingPersonNotFound is returned when no stored missing person report has the requested ID
	ErrMissingPersonNotFound = errors.New("missing person not found")
	// ErrSurvivorNotFound is returned when no stored survivor has the requested ID
	ErrSurvivorNotFound = errors.New("survivor not found")
	// ErrMatchNotFound is returned when no stored match has the requested ID
	ErrMatchNotFound = errors.New("match not found")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput is returned when a submitted record fails validation
	ErrInvalidInput = errors.New("invalid input")
)
