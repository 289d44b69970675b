// Package fx resolves company-specific exchange rates into the primary
// reporting currency.
package fx

import (
	"context"
	"errors"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// RateSource reads the configured rate for (currency, company). It returns
// mdshared.ErrNotFound when no company-specific rate row exists.
type RateSource interface {
	GetCompanyRate(ctx context.Context, currencyID, companyID int64) (float64, error)
}

// Resolver resolves exchange rates with a cache in front of the store.
// When no rate is configured the documented default of 1 applies.
type Resolver struct {
	source RateSource
	cache  *Cache
}

func NewResolver(source RateSource, cache *Cache) *Resolver {
	return &Resolver{source: source, cache: cache}
}

// Rate returns the exchange rate converting the given currency into the
// company's primary currency.
func (r *Resolver) Rate(ctx context.Context, currencyID, companyID int64) (float64, error) {
	if rate, ok := r.cache.Get(ctx, currencyID, companyID); ok {
		return rate, nil
	}
	rate, err := r.source.GetCompanyRate(ctx, currencyID, companyID)
	if errors.Is(err, mdshared.ErrNotFound) {
		rate = 1
	} else if err != nil {
		return 0, err
	}
	r.cache.Set(ctx, currencyID, companyID, rate)
	return rate, nil
}
