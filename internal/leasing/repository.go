package leasing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// Repository defines lease data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	List(ctx context.Context, limit, offset int) ([]Lease, error)
	Get(ctx context.Context, id int64) (Lease, error)
	GetByAsset(ctx context.Context, assetID int64) (Lease, error)
	ListPayments(ctx context.Context, leaseID int64) ([]Payment, error)
	GetPayment(ctx context.Context, leaseID, paymentID int64) (Payment, error)
}

// TxRepository groups writes that must land together: lease terms and their
// generated installments.
type TxRepository interface {
	InsertLease(ctx context.Context, l Lease) (Lease, error)
	UpdateLease(ctx context.Context, l Lease) error
	DeleteLease(ctx context.Context, id int64) error
	GetLeaseForUpdate(ctx context.Context, id int64) (Lease, error)
	CountPaidPayments(ctx context.Context, leaseID int64) (int, error)
	DeletePayments(ctx context.Context, leaseID int64) error
	InsertPayments(ctx context.Context, leaseID int64, payments []Payment) error
	SetPaymentStatus(ctx context.Context, paymentID int64, status string, paidAt *time.Time) error
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

const leaseColumns = `id, asset_id, lessor_partner_id, currency_id, total_obligation,
 annual_rate_pct, payment_amount, frequency, start_date, end_date, created_at, updated_at`

func scanLease(row pgx.Row) (Lease, error) {
	var l Lease
	err := row.Scan(&l.ID, &l.AssetID, &l.LessorPartnerID, &l.CurrencyID, &l.TotalObligation,
		&l.AnnualRatePct, &l.PaymentAmount, &l.Frequency, &l.StartDate, &l.EndDate, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lease{}, ErrLeaseNotFound
	}
	return l, err
}

func (r *pgRepository) List(ctx context.Context, limit, offset int) ([]Lease, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+leaseColumns+` FROM leases ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Lease, error) {
	return scanLease(r.pool.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id))
}

func (r *pgRepository) GetByAsset(ctx context.Context, assetID int64) (Lease, error) {
	return scanLease(r.pool.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE asset_id = $1`, assetID))
}

const paymentColumns = `id, lease_id, seq, due_date, amount, principal, interest, status, paid_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.LeaseID, &p.Seq, &p.DueDate, &p.Amount, &p.Principal, &p.Interest, &p.Status, &p.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (r *pgRepository) ListPayments(ctx context.Context, leaseID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM lease_payments WHERE lease_id = $1 ORDER BY seq`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepository) GetPayment(ctx context.Context, leaseID, paymentID int64) (Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM lease_payments WHERE id = $1 AND lease_id = $2`, paymentID, leaseID))
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) InsertLease(ctx context.Context, l Lease) (Lease, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO leases
(asset_id, lessor_partner_id, currency_id, total_obligation, annual_rate_pct, payment_amount, frequency, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at`,
		l.AssetID, l.LessorPartnerID, l.CurrencyID, l.TotalObligation, l.AnnualRatePct,
		l.PaymentAmount, l.Frequency, l.StartDate, l.EndDate).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Lease{}, ErrAssetLeased
	}
	return l, err
}

func (r *pgTxRepository) UpdateLease(ctx context.Context, l Lease) error {
	tag, err := r.tx.Exec(ctx, `UPDATE leases SET lessor_partner_id = $1, currency_id = $2,
 total_obligation = $3, annual_rate_pct = $4, payment_amount = $5, frequency = $6,
 start_date = $7, end_date = $8, updated_at = now()
WHERE id = $9`,
		l.LessorPartnerID, l.CurrencyID, l.TotalObligation, l.AnnualRatePct,
		l.PaymentAmount, l.Frequency, l.StartDate, l.EndDate, l.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeaseNotFound
	}
	return nil
}

func (r *pgTxRepository) DeleteLease(ctx context.Context, id int64) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM leases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeaseNotFound
	}
	return nil
}

func (r *pgTxRepository) GetLeaseForUpdate(ctx context.Context, id int64) (Lease, error) {
	return scanLease(r.tx.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1 FOR UPDATE`, id))
}

func (r *pgTxRepository) CountPaidPayments(ctx context.Context, leaseID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT count(*) FROM lease_payments WHERE lease_id = $1 AND status = $2`,
		leaseID, StatusPaid).Scan(&n)
	return n, err
}

func (r *pgTxRepository) DeletePayments(ctx context.Context, leaseID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM lease_payments WHERE lease_id = $1`, leaseID)
	return err
}

func (r *pgTxRepository) InsertPayments(ctx context.Context, leaseID int64, payments []Payment) error {
	for _, p := range payments {
		if _, err := r.tx.Exec(ctx, `INSERT INTO lease_payments
(lease_id, seq, due_date, amount, principal, interest, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			leaseID, p.Seq, p.DueDate, p.Amount, p.Principal, p.Interest, p.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgTxRepository) SetPaymentStatus(ctx context.Context, paymentID int64, status string, paidAt *time.Time) error {
	tag, err := r.tx.Exec(ctx, `UPDATE lease_payments SET status = $1, paid_at = $2 WHERE id = $3`,
		status, paidAt, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
