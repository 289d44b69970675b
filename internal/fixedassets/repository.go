package fixedassets

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// AssetContext bundles the asset with the resolution data the batch
// processor needs: the owning company (via branch) and the category code
// used in configuration error messages.
type AssetContext struct {
	Asset        Asset
	CompanyID    int64
	CategoryCode string
}

// Repository defines fixed-asset data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	ListAssets(ctx context.Context, req ListAssetsRequest) ([]Asset, error)
	GetAsset(ctx context.Context, id int64) (Asset, error)
	CreateAsset(ctx context.Context, in CreateAssetInput) (Asset, error)
	DisposeAsset(ctx context.Context, in DisposeInput) error

	ListSchedule(ctx context.Context, assetID int64) ([]ScheduleEntry, error)

	InsertMaintenance(ctx context.Context, in MaintenanceInput) (MaintenanceRecord, error)
	ListMaintenance(ctx context.Context, assetID int64) ([]MaintenanceRecord, error)
	ListTransfers(ctx context.Context, assetID int64) ([]TransferRecord, error)
}

// TxRepository defines operations executed inside one batch transaction.
type TxRepository interface {
	SelectDueEntries(ctx context.Context, asOf time.Time) ([]ScheduleEntry, error)
	SelectEntriesByIDs(ctx context.Context, ids []int64) ([]ScheduleEntry, error)
	GetAssetContextForUpdate(ctx context.Context, assetID int64) (AssetContext, error)
	InsertJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error)
	MarkEntryProcessed(ctx context.Context, entryID, journalID int64, at time.Time) error
	// SetDepreciationTotals is the quiet mutation path for the asset summary
	// fields. It touches nothing else and fires no recalculation.
	SetDepreciationTotals(ctx context.Context, assetID int64, accumulated, netBookValue float64) error

	InsertScheduleEntries(ctx context.Context, assetID int64, entries []ScheduleEntryInput) error
	UpdateAssetBranch(ctx context.Context, assetID, toBranchID int64) error
	InsertTransfer(ctx context.Context, rec TransferRecord) (int64, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const assetColumns = `id, code, name, category_id, branch_id, currency_id, classification,
 cost_basis, accumulated_depreciation, net_book_value, acquired_at, disposed_at,
 COALESCE(disposal_reason, ''), created_at, updated_at`

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.CategoryID, &a.BranchID, &a.CurrencyID, &a.Classification,
		&a.CostBasis, &a.AccumulatedDepreciation, &a.NetBookValue, &a.AcquiredAt, &a.DisposedAt,
		&a.DisposalReason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrAssetNotFound
	}
	return a, err
}

func (r *pgRepository) ListAssets(ctx context.Context, req ListAssetsRequest) ([]Asset, error) {
	if req.Limit < 1 {
		req.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets
WHERE ($1 = 0 OR branch_id = $1)
  AND ($2 = 0 OR category_id = $2)
  AND ($3::boolean IS NULL OR (disposed_at IS NOT NULL) = $3)
ORDER BY code LIMIT $4 OFFSET $5`, req.BranchID, req.CategoryID, req.Disposed, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *pgRepository) GetAsset(ctx context.Context, id int64) (Asset, error) {
	return scanAsset(r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
}

func (r *pgRepository) CreateAsset(ctx context.Context, in CreateAssetInput) (Asset, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO assets
(code, name, category_id, branch_id, currency_id, classification, cost_basis,
 accumulated_depreciation, net_book_value, acquired_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $7, $8) RETURNING id`,
		in.Code, in.Name, in.CategoryID, in.BranchID, in.CurrencyID, in.Classification,
		in.CostBasis, in.AcquiredAt).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Asset{}, shared.ErrDuplicate
	}
	if err != nil {
		return Asset{}, err
	}
	return r.GetAsset(ctx, id)
}

func (r *pgRepository) DisposeAsset(ctx context.Context, in DisposeInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assets SET disposed_at = $1, disposal_reason = $2, updated_at = now()
WHERE id = $3 AND disposed_at IS NULL`, in.DisposedAt, in.Reason, in.AssetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetDisposed
	}
	return nil
}

func (r *pgRepository) ListSchedule(ctx context.Context, assetID int64) ([]ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, asset_id, due_date, amount, processed, processed_at, journal_id
FROM depreciation_schedule WHERE asset_id = $1 ORDER BY due_date`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleRows(rows)
}

func (r *pgRepository) InsertMaintenance(ctx context.Context, in MaintenanceInput) (MaintenanceRecord, error) {
	rec := MaintenanceRecord{
		AssetID:     in.AssetID,
		PerformedAt: in.PerformedAt,
		Cost:        in.Cost,
		Description: in.Description,
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO asset_maintenance (asset_id, performed_at, cost, description)
VALUES ($1, $2, $3, $4) RETURNING id`, in.AssetID, in.PerformedAt, in.Cost, in.Description).Scan(&rec.ID)
	return rec, err
}

func (r *pgRepository) ListMaintenance(ctx context.Context, assetID int64) ([]MaintenanceRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, asset_id, performed_at, cost, description
FROM asset_maintenance WHERE asset_id = $1 ORDER BY performed_at DESC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MaintenanceRecord
	for rows.Next() {
		var m MaintenanceRecord
		if err := rows.Scan(&m.ID, &m.AssetID, &m.PerformedAt, &m.Cost, &m.Description); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListTransfers(ctx context.Context, assetID int64) ([]TransferRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, asset_id, from_branch_id, to_branch_id, transferred_at, COALESCE(note, '')
FROM asset_transfers WHERE asset_id = $1 ORDER BY transferred_at DESC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransferRecord
	for rows.Next() {
		var t TransferRecord
		if err := rows.Scan(&t.ID, &t.AssetID, &t.FromBranchID, &t.ToBranchID, &t.TransferredAt, &t.Note); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx pgx.Tx
}

func scanScheduleRows(rows pgx.Rows) ([]ScheduleEntry, error) {
	var out []ScheduleEntry
	for rows.Next() {
		var e ScheduleEntry
		if err := rows.Scan(&e.ID, &e.AssetID, &e.DueDate, &e.Amount, &e.Processed, &e.ProcessedAt, &e.JournalID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SelectDueEntries picks every unprocessed entry due on or before asOf for
// assets still in service, oldest first, locking the rows for the batch.
func (r *pgTxRepository) SelectDueEntries(ctx context.Context, asOf time.Time) ([]ScheduleEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT s.id, s.asset_id, s.due_date, s.amount, s.processed, s.processed_at, s.journal_id
FROM depreciation_schedule s
JOIN assets a ON a.id = s.asset_id
WHERE s.processed = false AND s.due_date <= $1 AND a.disposed_at IS NULL
ORDER BY s.due_date, s.id
FOR UPDATE OF s`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleRows(rows)
}

// SelectEntriesByIDs loads the caller-supplied set, silently dropping IDs
// that do not exist, in schedule-date order.
func (r *pgTxRepository) SelectEntriesByIDs(ctx context.Context, ids []int64) ([]ScheduleEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, asset_id, due_date, amount, processed, processed_at, journal_id
FROM depreciation_schedule WHERE id = ANY($1)
ORDER BY due_date, id
FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleRows(rows)
}

func (r *pgTxRepository) GetAssetContextForUpdate(ctx context.Context, assetID int64) (AssetContext, error) {
	var ctxRow AssetContext
	row := r.tx.QueryRow(ctx, `SELECT a.id, a.code, a.name, a.category_id, a.branch_id, a.currency_id, a.classification,
 a.cost_basis, a.accumulated_depreciation, a.net_book_value, a.acquired_at, a.disposed_at,
 COALESCE(a.disposal_reason, ''), a.created_at, a.updated_at, b.company_id, c.code
FROM assets a
JOIN branches b ON b.id = a.branch_id
JOIN asset_categories c ON c.id = a.category_id
WHERE a.id = $1
FOR UPDATE OF a`, assetID)
	a := &ctxRow.Asset
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.CategoryID, &a.BranchID, &a.CurrencyID, &a.Classification,
		&a.CostBasis, &a.AccumulatedDepreciation, &a.NetBookValue, &a.AcquiredAt, &a.DisposedAt,
		&a.DisposalReason, &a.CreatedAt, &a.UpdatedAt, &ctxRow.CompanyID, &ctxRow.CategoryCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return AssetContext{}, ErrAssetNotFound
	}
	return ctxRow, err
}

func (r *pgTxRepository) InsertJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error) {
	return ledger.InsertJournalTx(ctx, r.tx, j)
}

func (r *pgTxRepository) MarkEntryProcessed(ctx context.Context, entryID, journalID int64, at time.Time) error {
	tag, err := r.tx.Exec(ctx, `UPDATE depreciation_schedule
SET processed = true, processed_at = $1, journal_id = $2
WHERE id = $3 AND processed = false`, at, journalID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) SetDepreciationTotals(ctx context.Context, assetID int64, accumulated, netBookValue float64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE assets SET accumulated_depreciation = $1, net_book_value = $2, updated_at = now()
WHERE id = $3`, accumulated, netBookValue, assetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (r *pgTxRepository) InsertScheduleEntries(ctx context.Context, assetID int64, entries []ScheduleEntryInput) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO depreciation_schedule (asset_id, due_date, amount, processed)
VALUES ($1, $2, $3, false)`, assetID, e.DueDate, e.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgTxRepository) UpdateAssetBranch(ctx context.Context, assetID, toBranchID int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE assets SET branch_id = $1, updated_at = now() WHERE id = $2`, toBranchID, assetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (r *pgTxRepository) InsertTransfer(ctx context.Context, rec TransferRecord) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO asset_transfers (asset_id, from_branch_id, to_branch_id, transferred_at, note)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.AssetID, rec.FromBranchID, rec.ToBranchID, rec.TransferredAt, rec.Note).Scan(&id)
	return id, err
}
