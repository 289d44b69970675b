package fx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type stubRateSource struct {
	rates map[[2]int64]float64
	calls int
}

func (s *stubRateSource) GetCompanyRate(ctx context.Context, currencyID, companyID int64) (float64, error) {
	s.calls++
	rate, ok := s.rates[[2]int64{currencyID, companyID}]
	if !ok {
		return 0, mdshared.ErrNotFound
	}
	return rate, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestRateDefaultsToOneWithoutCompanyRow(t *testing.T) {
	source := &stubRateSource{rates: map[[2]int64]float64{}}
	resolver := NewResolver(source, newTestCache(t))

	rate, err := resolver.Rate(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Equal(t, 1.0, rate)
}

func TestRateUsesConfiguredCompanyRate(t *testing.T) {
	source := &stubRateSource{rates: map[[2]int64]float64{{2, 1}: 15_500}}
	resolver := NewResolver(source, newTestCache(t))

	rate, err := resolver.Rate(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, 15_500.0, rate)
}

func TestRateIsCachedAfterFirstLookup(t *testing.T) {
	source := &stubRateSource{rates: map[[2]int64]float64{{2, 1}: 4.25}}
	resolver := NewResolver(source, newTestCache(t))

	for i := 0; i < 3; i++ {
		rate, err := resolver.Rate(context.Background(), 2, 1)
		require.NoError(t, err)
		require.Equal(t, 4.25, rate)
	}
	require.Equal(t, 1, source.calls)
}

func TestInvalidateForcesFreshLookup(t *testing.T) {
	source := &stubRateSource{rates: map[[2]int64]float64{{2, 1}: 4.25}}
	cache := newTestCache(t)
	resolver := NewResolver(source, cache)

	rate, err := resolver.Rate(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, 4.25, rate)

	source.rates[[2]int64{2, 1}] = 5.00
	cache.Invalidate(context.Background(), 2, 1)

	rate, err = resolver.Rate(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, 5.00, rate)
	require.Equal(t, 2, source.calls)
}

func TestRateWorksWithNilCache(t *testing.T) {
	source := &stubRateSource{rates: map[[2]int64]float64{{2, 1}: 2}}
	resolver := NewResolver(source, NewCache(nil, 0))

	rate, err := resolver.Rate(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2.0, rate)
}
