package branches

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error)
	Get(ctx context.Context, id int64) (Branch, error)
	Create(ctx context.Context, b Branch) (Branch, error)
	Update(ctx context.Context, id int64, b Branch) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	filters = filters.Normalize()
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}
	var companyID int64
	if filters.CompanyID != nil {
		companyID = *filters.CompanyID
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM branches
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) AND ($2 = 0 OR company_id = $2)`,
		search, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, company_id, code, name, COALESCE(address, '') FROM branches
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) AND ($2 = 0 OR company_id = $2)
ORDER BY name LIMIT $3 OFFSET $4`, search, companyID, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Code, &b.Name, &b.Address); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Branch, error) {
	var b Branch
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, code, name, COALESCE(address, '') FROM branches WHERE id = $1`, id).
		Scan(&b.ID, &b.CompanyID, &b.Code, &b.Name, &b.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, b Branch) (Branch, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO branches (company_id, code, name, address)
VALUES ($1, $2, $3, $4) RETURNING id`, b.CompanyID, b.Code, b.Name, b.Address).Scan(&b.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Branch{}, shared.ErrDuplicate
	}
	return b, err
}

func (r *repository) Update(ctx context.Context, id int64, b Branch) error {
	tag, err := r.pool.Exec(ctx, `UPDATE branches SET company_id = $1, code = $2, name = $3, address = $4 WHERE id = $5`,
		b.CompanyID, b.Code, b.Name, b.Address, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
