package partners

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Partner, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Partner, error) {
	if id <= 0 {
		return Partner{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Partner) (Partner, error) {
	if err := s.validate(p); err != nil {
		return Partner{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, p Partner) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(p Partner) error {
	if strings.TrimSpace(p.Code) == "" {
		return shared.Invalid("partner code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return shared.Invalid("partner name is required")
	}
	return nil
}
