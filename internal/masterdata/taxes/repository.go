package taxes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	ListJurisdictions(ctx context.Context, filters shared.ListFilters) ([]Jurisdiction, int, error)
	CreateJurisdiction(ctx context.Context, j Jurisdiction) (Jurisdiction, error)
	DeleteJurisdiction(ctx context.Context, id int64) error

	ListComponents(ctx context.Context, jurisdictionID int64) ([]Component, error)
	CreateComponent(ctx context.Context, c Component) (Component, error)
	UpdateComponent(ctx context.Context, id int64, c Component) error
	DeleteComponent(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]TaxCategory, error)
	CreateCategory(ctx context.Context, c TaxCategory) (TaxCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListJurisdictions(ctx context.Context, filters shared.ListFilters) ([]Jurisdiction, int, error) {
	filters = filters.Normalize()
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tax_jurisdictions WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM tax_jurisdictions
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Jurisdiction
	for rows.Next() {
		var j Jurisdiction
		if err := rows.Scan(&j.ID, &j.Code, &j.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

func (r *repository) CreateJurisdiction(ctx context.Context, j Jurisdiction) (Jurisdiction, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO tax_jurisdictions (code, name) VALUES ($1, $2) RETURNING id`,
		j.Code, j.Name).Scan(&j.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Jurisdiction{}, shared.ErrDuplicate
	}
	return j, err
}

func (r *repository) DeleteJurisdiction(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_jurisdictions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListComponents(ctx context.Context, jurisdictionID int64) ([]Component, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, jurisdiction_id, name, rate FROM tax_components
WHERE ($1 = 0 OR jurisdiction_id = $1) ORDER BY name`, jurisdictionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.JurisdictionID, &c.Name, &c.Rate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateComponent(ctx context.Context, c Component) (Component, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO tax_components (jurisdiction_id, name, rate)
VALUES ($1, $2, $3) RETURNING id`, c.JurisdictionID, c.Name, c.Rate).Scan(&c.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Component{}, shared.ErrDuplicate
		case "23503":
			return Component{}, shared.ErrNotFound
		}
	}
	return c, err
}

func (r *repository) UpdateComponent(ctx context.Context, id int64, c Component) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tax_components SET name = $1, rate = $2 WHERE id = $3`, c.Name, c.Rate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteComponent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_components WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListCategories(ctx context.Context) ([]TaxCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.id, c.name, COALESCE(array_agg(m.component_id) FILTER (WHERE m.component_id IS NOT NULL), '{}')
FROM tax_categories c
LEFT JOIN tax_category_components m ON m.category_id = c.id
GROUP BY c.id, c.name ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaxCategory
	for rows.Next() {
		var c TaxCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.ComponentIDs); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, c TaxCategory) (TaxCategory, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TaxCategory{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := tx.QueryRow(ctx, `INSERT INTO tax_categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return TaxCategory{}, shared.ErrDuplicate
		}
		return TaxCategory{}, err
	}
	for _, componentID := range c.ComponentIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO tax_category_components (category_id, component_id) VALUES ($1, $2)`,
			c.ID, componentID); err != nil {
			return TaxCategory{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return TaxCategory{}, err
	}
	return c, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tax_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
