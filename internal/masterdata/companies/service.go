package companies

import (
	"context"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Company) (Company, error) {
	if err := s.validate(c); err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Company) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(c Company) error {
	if strings.TrimSpace(c.Code) == "" {
		return shared.Invalid("company code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return shared.Invalid("company name is required")
	}
	if c.PrimaryCurrencyID <= 0 {
		return shared.Invalid("primary currency is required")
	}
	return nil
}
