package domain

import "errors"

// Storage-level sentinel errors. Repositories return these two and nothing
// else that callers are expected to branch on; business outcomes such as
// ErrSlotFull are decided above the storage layer.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrVersionConflict is returned by compare-and-update when the slot
	// row changed since it was read. Callers re-read and retry.
	ErrVersionConflict = errors.New("version conflict")
)

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("invalid input")
