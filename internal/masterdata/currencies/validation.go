package currencies

import (
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

func (s *Service) validate(c Currency) error {
	if strings.TrimSpace(c.Code) == "" {
		return shared.Invalid("currency code is required")
	}
	if len(c.Code) != 3 {
		return shared.Invalid("currency code must be 3 letters")
	}
	if strings.TrimSpace(c.Name) == "" {
		return shared.Invalid("currency name is required")
	}
	return nil
}
