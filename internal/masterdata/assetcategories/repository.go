package assetcategories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int64, c Category) error
	Delete(ctx context.Context, id int64) error

	UpsertAccounts(ctx context.Context, accounts CategoryAccounts) (CategoryAccounts, error)
	GetAccounts(ctx context.Context, categoryID, companyID int64) (CategoryAccounts, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	filters = filters.Normalize()
	search := ""
	if filters.Search != "" {
		search = "%" + filters.Search + "%"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM asset_categories WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1)`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM asset_categories
WHERE ($1 = '' OR code ILIKE $1 OR name ILIKE $1) ORDER BY name LIMIT $2 OFFSET $3`,
		search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, code, name FROM asset_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO asset_categories (code, name) VALUES ($1, $2) RETURNING id`,
		c.Code, c.Name).Scan(&c.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Category{}, shared.ErrDuplicate
	}
	return c, err
}

func (r *repository) Update(ctx context.Context, id int64, c Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE asset_categories SET code = $1, name = $2 WHERE id = $3`, c.Code, c.Name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM asset_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpsertAccounts(ctx context.Context, a CategoryAccounts) (CategoryAccounts, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO asset_category_accounts
(category_id, company_id, depreciation_expense_account_id, accumulated_depreciation_account_id,
 amortization_expense_account_id, prepaid_amortization_account_id)
VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, 0), NULLIF($5, 0), NULLIF($6, 0))
ON CONFLICT (category_id, company_id) DO UPDATE SET
 depreciation_expense_account_id = EXCLUDED.depreciation_expense_account_id,
 accumulated_depreciation_account_id = EXCLUDED.accumulated_depreciation_account_id,
 amortization_expense_account_id = EXCLUDED.amortization_expense_account_id,
 prepaid_amortization_account_id = EXCLUDED.prepaid_amortization_account_id
RETURNING id`,
		a.CategoryID, a.CompanyID,
		a.DepreciationExpenseAccountID, a.AccumulatedDepreciationAccountID,
		a.AmortizationExpenseAccountID, a.PrepaidAmortizationAccountID).Scan(&a.ID)
	return a, err
}

// GetAccounts returns the configured accounts for (category, company).
// Missing rows come back as shared.ErrNotFound; unset account columns scan
// as zero.
func (r *repository) GetAccounts(ctx context.Context, categoryID, companyID int64) (CategoryAccounts, error) {
	var a CategoryAccounts
	err := r.pool.QueryRow(ctx, `SELECT id, category_id, company_id,
 COALESCE(depreciation_expense_account_id, 0), COALESCE(accumulated_depreciation_account_id, 0),
 COALESCE(amortization_expense_account_id, 0), COALESCE(prepaid_amortization_account_id, 0)
FROM asset_category_accounts WHERE category_id = $1 AND company_id = $2`, categoryID, companyID).
		Scan(&a.ID, &a.CategoryID, &a.CompanyID,
			&a.DepreciationExpenseAccountID, &a.AccumulatedDepreciationAccountID,
			&a.AmortizationExpenseAccountID, &a.PrepaidAmortizationAccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return CategoryAccounts{}, shared.ErrNotFound
	}
	return a, err
}
