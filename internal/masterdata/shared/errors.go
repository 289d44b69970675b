package shared

import (
	"fmt"

	core "github.com/meridian-erp/meridian-erp/internal/shared"
)

// Master data errors reuse the core sentinels so every HTTP layer maps them
// the same way.
var (
	ErrNotFound   = core.ErrNotFound
	ErrDuplicate  = core.ErrDuplicate
	ErrValidation = core.ErrValidation
	ErrInvalidID  = fmt.Errorf("%w: invalid ID", core.ErrValidation)
)

// Invalid wraps a field-level validation message with ErrValidation.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
