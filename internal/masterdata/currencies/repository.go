package currencies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error)
	Get(ctx context.Context, id int64) (Currency, error)
	Create(ctx context.Context, c Currency) (Currency, error)
	Update(ctx context.Context, id int64, c Currency) error
	Delete(ctx context.Context, id int64) error

	UpsertCompanyRate(ctx context.Context, rate CompanyRate) (CompanyRate, error)
	GetCompanyRate(ctx context.Context, currencyID, companyID int64) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	filters = filters.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM currencies WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1)`
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}
	if err := r.pool.QueryRow(ctx, countQuery, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, code, name, symbol, is_primary FROM currencies
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) ORDER BY code LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.IsPrimary); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Currency, error) {
	var c Currency
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, symbol, is_primary FROM currencies WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.IsPrimary)
	if errors.Is(err, pgx.ErrNoRows) {
		return Currency{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Currency) (Currency, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO currencies (code, name, symbol, is_primary)
VALUES ($1, $2, $3, $4) RETURNING id`, c.Code, c.Name, c.Symbol, c.IsPrimary).Scan(&c.ID)
	if isUniqueViolation(err) {
		return Currency{}, shared.ErrDuplicate
	}
	return c, err
}

func (r *repository) Update(ctx context.Context, id int64, c Currency) error {
	tag, err := r.pool.Exec(ctx, `UPDATE currencies SET code = $1, name = $2, symbol = $3, is_primary = $4 WHERE id = $5`,
		c.Code, c.Name, c.Symbol, c.IsPrimary, id)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM currencies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpsertCompanyRate(ctx context.Context, rate CompanyRate) (CompanyRate, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO company_exchange_rates (currency_id, company_id, rate)
VALUES ($1, $2, $3)
ON CONFLICT (currency_id, company_id) DO UPDATE SET rate = EXCLUDED.rate
RETURNING id`, rate.CurrencyID, rate.CompanyID, rate.Rate).Scan(&rate.ID)
	return rate, err
}

// GetCompanyRate returns the configured rate, or shared.ErrNotFound when no
// company-specific row exists. Callers fall back to 1.
func (r *repository) GetCompanyRate(ctx context.Context, currencyID, companyID int64) (float64, error) {
	var rate float64
	err := r.pool.QueryRow(ctx, `SELECT rate FROM company_exchange_rates WHERE currency_id = $1 AND company_id = $2`,
		currencyID, companyID).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	return rate, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
