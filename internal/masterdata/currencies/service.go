package currencies

import (
	"context"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// RateInvalidator drops any cached resolution of a (currency, company) rate
// after the stored rate changes.
type RateInvalidator interface {
	Invalidate(ctx context.Context, currencyID, companyID int64)
}

type Service struct {
	repo        Repository
	invalidator RateInvalidator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithRateInvalidator attaches the cache invalidation hook.
func (s *Service) WithRateInvalidator(inv RateInvalidator) *Service {
	s.invalidator = inv
	return s
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Currency, error) {
	if id <= 0 {
		return Currency{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Currency) (Currency, error) {
	if err := s.validate(c); err != nil {
		return Currency{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Currency) error {
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

// SetCompanyRate records the company-specific conversion rate into the
// primary currency.
func (s *Service) SetCompanyRate(ctx context.Context, rate CompanyRate) (CompanyRate, error) {
	if rate.CurrencyID <= 0 || rate.CompanyID <= 0 {
		return CompanyRate{}, shared.ErrInvalidID
	}
	if rate.Rate <= 0 {
		return CompanyRate{}, shared.Invalid("exchange rate must be positive")
	}
	saved, err := s.repo.UpsertCompanyRate(ctx, rate)
	if err != nil {
		return CompanyRate{}, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, rate.CurrencyID, rate.CompanyID)
	}
	return saved, nil
}
