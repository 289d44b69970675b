package taxes

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

func (s *Service) ListJurisdictions(ctx context.Context, filters shared.ListFilters) ([]Jurisdiction, int, error) {
	return s.repo.ListJurisdictions(ctx, filters)
}

func (s *Service) CreateJurisdiction(ctx context.Context, j Jurisdiction) (Jurisdiction, error) {
	if strings.TrimSpace(j.Code) == "" {
		return Jurisdiction{}, shared.Invalid("jurisdiction code is required")
	}
	if strings.TrimSpace(j.Name) == "" {
		return Jurisdiction{}, shared.Invalid("jurisdiction name is required")
	}
	return s.repo.CreateJurisdiction(ctx, j)
}

func (s *Service) DeleteJurisdiction(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.DeleteJurisdiction(ctx, id)
}

func (s *Service) ListComponents(ctx context.Context, jurisdictionID int64) ([]Component, error) {
	return s.repo.ListComponents(ctx, jurisdictionID)
}

func (s *Service) CreateComponent(ctx context.Context, c Component) (Component, error) {
	if err := validateComponent(c); err != nil {
		return Component{}, err
	}
	return s.repo.CreateComponent(ctx, c)
}

func (s *Service) UpdateComponent(ctx context.Context, id int64, c Component) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validateComponent(c); err != nil {
		return err
	}
	return s.repo.UpdateComponent(ctx, id, c)
}

func (s *Service) DeleteComponent(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.DeleteComponent(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]TaxCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c TaxCategory) (TaxCategory, error) {
	if strings.TrimSpace(c.Name) == "" {
		return TaxCategory{}, shared.Invalid("tax category name is required")
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.DeleteCategory(ctx, id)
}

func validateComponent(c Component) error {
	if c.JurisdictionID <= 0 {
		return shared.Invalid("component jurisdiction is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return shared.Invalid("component name is required")
	}
	if c.Rate < 0 || c.Rate > 100 {
		return shared.Invalid("component rate must be between 0 and 100")
	}
	return nil
}
