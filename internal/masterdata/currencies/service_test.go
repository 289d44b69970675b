package currencies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type memoryCurrencyRepo struct {
	currencies map[int64]Currency
	rates      map[[2]int64]CompanyRate
	nextID     int64
}

func newMemoryCurrencyRepo() *memoryCurrencyRepo {
	return &memoryCurrencyRepo{
		currencies: make(map[int64]Currency),
		rates:      make(map[[2]int64]CompanyRate),
		nextID:     1,
	}
}

func (m *memoryCurrencyRepo) List(_ context.Context, _ shared.ListFilters) ([]Currency, int, error) {
	out := make([]Currency, 0, len(m.currencies))
	for _, c := range m.currencies {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryCurrencyRepo) Get(_ context.Context, id int64) (Currency, error) {
	c, ok := m.currencies[id]
	if !ok {
		return Currency{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryCurrencyRepo) Create(_ context.Context, c Currency) (Currency, error) {
	for _, existing := range m.currencies {
		if existing.Code == c.Code {
			return Currency{}, shared.ErrDuplicate
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.currencies[c.ID] = c
	return c, nil
}

func (m *memoryCurrencyRepo) Update(_ context.Context, id int64, c Currency) error {
	if _, ok := m.currencies[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	m.currencies[id] = c
	return nil
}

func (m *memoryCurrencyRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.currencies[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.currencies, id)
	return nil
}

func (m *memoryCurrencyRepo) UpsertCompanyRate(_ context.Context, rate CompanyRate) (CompanyRate, error) {
	key := [2]int64{rate.CurrencyID, rate.CompanyID}
	if existing, ok := m.rates[key]; ok {
		rate.ID = existing.ID
	} else {
		rate.ID = m.nextID
		m.nextID++
	}
	m.rates[key] = rate
	return rate, nil
}

func (m *memoryCurrencyRepo) GetCompanyRate(_ context.Context, currencyID, companyID int64) (float64, error) {
	rate, ok := m.rates[[2]int64{currencyID, companyID}]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return rate.Rate, nil
}

type recordInvalidator struct {
	calls [][2]int64
}

func (r *recordInvalidator) Invalidate(_ context.Context, currencyID, companyID int64) {
	r.calls = append(r.calls, [2]int64{currencyID, companyID})
}

func TestCurrencyServiceCreateValidates(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryCurrencyRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Currency{Code: "", Name: "Euro"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Currency{Code: "EURO", Name: "Euro"})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(ctx, Currency{Code: "EUR", Name: "Euro", Symbol: "€"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestCurrencyServiceCreateRejectsDuplicateCode(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryCurrencyRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Currency{Code: "USD", Name: "US Dollar"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Currency{Code: "USD", Name: "US Dollar again"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestSetCompanyRateInvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := newMemoryCurrencyRepo()
	inv := &recordInvalidator{}
	svc := NewService(repo).WithRateInvalidator(inv)
	ctx := context.Background()

	saved, err := svc.SetCompanyRate(ctx, CompanyRate{CurrencyID: 2, CompanyID: 7, Rate: 15500})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, [][2]int64{{2, 7}}, inv.calls)

	got, err := repo.GetCompanyRate(ctx, 2, 7)
	require.NoError(t, err)
	require.Equal(t, 15500.0, got)
}

func TestSetCompanyRateRejectsNonPositiveRate(t *testing.T) {
	t.Parallel()

	inv := &recordInvalidator{}
	svc := NewService(newMemoryCurrencyRepo()).WithRateInvalidator(inv)

	_, err := svc.SetCompanyRate(context.Background(), CompanyRate{CurrencyID: 2, CompanyID: 7, Rate: 0})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, inv.calls)
}
