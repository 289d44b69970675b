package assetcategories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Category) (Category, error) {
	if err := s.validate(c); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Category) error {
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

// ConfigureAccounts records the classification account pairs for a category
// within one company.
func (s *Service) ConfigureAccounts(ctx context.Context, a CategoryAccounts) (CategoryAccounts, error) {
	if a.CategoryID <= 0 || a.CompanyID <= 0 {
		return CategoryAccounts{}, shared.ErrInvalidID
	}
	return s.repo.UpsertAccounts(ctx, a)
}

// Accounts returns the account configuration for (category, company).
func (s *Service) Accounts(ctx context.Context, categoryID, companyID int64) (CategoryAccounts, error) {
	if categoryID <= 0 || companyID <= 0 {
		return CategoryAccounts{}, shared.ErrInvalidID
	}
	return s.repo.GetAccounts(ctx, categoryID, companyID)
}

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Code) == "" {
		return shared.Invalid("category code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return shared.Invalid("category name is required")
	}
	return nil
}
