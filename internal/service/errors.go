package service

import "errors"

// Request-boundary error taxonomy. Handlers translate these with errors.Is.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrDuplicateClaim      = errors.New("already claimed today")
	ErrInsufficientBalance = errors.New("insufficient points")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
)
