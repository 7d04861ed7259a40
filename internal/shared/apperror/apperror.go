// Package apperror defines the error classes shared by the usecases so that
// the delivery layer can map them to HTTP status codes.
package apperror

import "errors"

var (
	// ErrInvalidArgument marks requests rejected before any state change
	// (self-relationship, unknown kind, missing fields).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks references to actors, agents or monitors that do
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks approval attempts by a caller that does not own
	// the target.
	ErrForbidden = errors.New("forbidden")
)
