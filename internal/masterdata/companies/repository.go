package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, c Company) (Company, error)
	Update(ctx context.Context, id int64, c Company) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	filters = filters.Normalize()
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, code, name, primary_currency_id FROM companies
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.PrimaryCurrencyID); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, primary_currency_id FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.PrimaryCurrencyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (code, name, primary_currency_id)
VALUES ($1, $2, $3) RETURNING id`, c.Code, c.Name, c.PrimaryCurrencyID).Scan(&c.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Company{}, shared.ErrDuplicate
	}
	return c, err
}

func (r *repository) Update(ctx context.Context, id int64, c Company) error {
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET code = $1, name = $2, primary_currency_id = $3 WHERE id = $4`,
		c.Code, c.Name, c.PrimaryCurrencyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
