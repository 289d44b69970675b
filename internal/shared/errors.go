package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record is absent.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrUnprocessable marks domain rule violations (overpay, misconfigured
	// accounts, cross-partner allocations) that reject the whole operation.
	ErrUnprocessable = errors.New("unprocessable")
)
