package taxes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type memoryTaxRepo struct {
	jurisdictions map[int64]Jurisdiction
	components    map[int64]Component
	categories    map[int64]TaxCategory
	nextID        int64
}

func newMemoryTaxRepo() *memoryTaxRepo {
	return &memoryTaxRepo{
		jurisdictions: make(map[int64]Jurisdiction),
		components:    make(map[int64]Component),
		categories:    make(map[int64]TaxCategory),
		nextID:        1,
	}
}

func (m *memoryTaxRepo) ListJurisdictions(_ context.Context, _ shared.ListFilters) ([]Jurisdiction, int, error) {
	out := make([]Jurisdiction, 0, len(m.jurisdictions))
	for _, j := range m.jurisdictions {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (m *memoryTaxRepo) CreateJurisdiction(_ context.Context, j Jurisdiction) (Jurisdiction, error) {
	for _, existing := range m.jurisdictions {
		if existing.Code == j.Code {
			return Jurisdiction{}, shared.ErrDuplicate
		}
	}
	j.ID = m.nextID
	m.nextID++
	m.jurisdictions[j.ID] = j
	return j, nil
}

func (m *memoryTaxRepo) DeleteJurisdiction(_ context.Context, id int64) error {
	if _, ok := m.jurisdictions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.jurisdictions, id)
	return nil
}

func (m *memoryTaxRepo) ListComponents(_ context.Context, jurisdictionID int64) ([]Component, error) {
	var out []Component
	for _, c := range m.components {
		if c.JurisdictionID == jurisdictionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryTaxRepo) CreateComponent(_ context.Context, c Component) (Component, error) {
	c.ID = m.nextID
	m.nextID++
	m.components[c.ID] = c
	return c, nil
}

func (m *memoryTaxRepo) UpdateComponent(_ context.Context, id int64, c Component) error {
	if _, ok := m.components[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	m.components[id] = c
	return nil
}

func (m *memoryTaxRepo) DeleteComponent(_ context.Context, id int64) error {
	if _, ok := m.components[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.components, id)
	return nil
}

func (m *memoryTaxRepo) ListCategories(_ context.Context) ([]TaxCategory, error) {
	out := make([]TaxCategory, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryTaxRepo) CreateCategory(_ context.Context, c TaxCategory) (TaxCategory, error) {
	c.ID = m.nextID
	m.nextID++
	m.categories[c.ID] = c
	return c, nil
}

func (m *memoryTaxRepo) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func TestCreateJurisdictionRequiresCodeAndName(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryTaxRepo())
	ctx := context.Background()

	_, err := svc.CreateJurisdiction(ctx, Jurisdiction{Name: "Jakarta"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateJurisdiction(ctx, Jurisdiction{Code: "ID-JK"})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.CreateJurisdiction(ctx, Jurisdiction{Code: "ID-JK", Name: "Jakarta"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestCreateComponentBoundsRate(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryTaxRepo())
	ctx := context.Background()

	jur, err := svc.CreateJurisdiction(ctx, Jurisdiction{Code: "ID", Name: "Indonesia"})
	require.NoError(t, err)

	cases := []struct {
		name string
		rate float64
		ok   bool
	}{
		{name: "negative", rate: -1, ok: false},
		{name: "over hundred", rate: 101, ok: false},
		{name: "zero exempt", rate: 0, ok: true},
		{name: "standard vat", rate: 11, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateComponent(ctx, Component{JurisdictionID: jur.ID, Name: "VAT", Rate: tc.rate})
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, shared.ErrValidation)
			}
		})
	}
}

func TestComponentOperationsRejectBadIDs(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryTaxRepo())
	ctx := context.Background()

	err := svc.UpdateComponent(ctx, 0, Component{JurisdictionID: 1, Name: "VAT", Rate: 11})
	require.ErrorIs(t, err, shared.ErrInvalidID)

	err = svc.DeleteComponent(ctx, -5)
	require.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = svc.CreateComponent(ctx, Component{Name: "VAT", Rate: 11})
	require.ErrorIs(t, err, shared.ErrValidation)
}
