package branches

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, b Branch) (Branch, error) {
	if err := s.validate(b); err != nil {
		return Branch{}, err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id int64, b Branch) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(b); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, b)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(b Branch) error {
	if b.CompanyID <= 0 {
		return shared.Invalid("branch company is required")
	}
	if strings.TrimSpace(b.Code) == "" {
		return shared.Invalid("branch code is required")
	}
	if strings.TrimSpace(b.Name) == "" {
		return shared.Invalid("branch name is required")
	}
	return nil
}
