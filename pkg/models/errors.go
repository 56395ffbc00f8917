package models

import "errors"

// Error kinds surfaced by the core operations. Callers match them with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound means the entity does not exist or is not visible to the
	// caller's user.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the entity exists but belongs to a different user.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict means the operation collides with existing state, such as a
	// duplicate unique field or an installment that is no longer pending.
	ErrConflict = errors.New("conflict")
	// ErrValidation means the input is malformed or out of range.
	ErrValidation = errors.New("validation")
)
