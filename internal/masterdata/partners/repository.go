package partners

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Partner, int, error)
	Get(ctx context.Context, id int64) (Partner, error)
	Create(ctx context.Context, p Partner) (Partner, error)
	Update(ctx context.Context, id int64, p Partner) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Partner, int, error) {
	filters = filters.Normalize()
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM partners WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, code, name, COALESCE(phone, ''), COALESCE(email, '') FROM partners
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Phone, &p.Email); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Partner, error) {
	var p Partner
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, COALESCE(phone, ''), COALESCE(email, '') FROM partners WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Phone, &p.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Partner) (Partner, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO partners (code, name, phone, email)
VALUES ($1, $2, $3, $4) RETURNING id`, p.Code, p.Name, p.Phone, p.Email).Scan(&p.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Partner{}, shared.ErrDuplicate
	}
	return p, err
}

func (r *repository) Update(ctx context.Context, id int64, p Partner) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partners SET code = $1, name = $2, phone = $3, email = $4 WHERE id = $5`,
		p.Code, p.Name, p.Phone, p.Email, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
