package debts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Repository defines debt and payment data access. All reads exclude
// soft-deleted rows.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	ListDebts(ctx context.Context, req ListDebtsRequest) ([]ExternalDebt, error)
	GetDebt(ctx context.Context, id int64) (ExternalDebt, error)
	CreateDebt(ctx context.Context, in CreateDebtInput) (ExternalDebt, error)

	ListPayments(ctx context.Context, partnerID int64, limit, offset int) ([]Payment, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)

	// AllocatedTotal sums non-deleted details of non-deleted payments of the
	// debt's type against one debt, optionally excluding one payment.
	AllocatedTotal(ctx context.Context, debtID, excludePaymentID int64) (float64, error)
}

// TxRepository groups the writes of one allocation batch.
type TxRepository interface {
	GetDebtsForUpdate(ctx context.Context, ids []int64) (map[int64]ExternalDebt, error)
	AllocatedTotalTx(ctx context.Context, debtID int64) (float64, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	SoftDeleteDebt(ctx context.Context, id int64, at time.Time) error
	SoftDeletePayment(ctx context.Context, id int64, at time.Time) error
	CountDebtAllocations(ctx context.Context, debtID int64) (int, error)
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

const debtColumns = `id, number, partner_id, type, currency_id, total_amount, issued_at,
 COALESCE(description, ''), deleted_at, created_at`

func scanDebt(row pgx.Row) (ExternalDebt, error) {
	var d ExternalDebt
	err := row.Scan(&d.ID, &d.Number, &d.PartnerID, &d.Type, &d.CurrencyID, &d.TotalAmount,
		&d.IssuedAt, &d.Description, &d.DeletedAt, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ExternalDebt{}, ErrDebtNotFound
	}
	return d, err
}

func (r *pgRepository) ListDebts(ctx context.Context, req ListDebtsRequest) ([]ExternalDebt, error) {
	if req.Limit < 1 {
		req.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+debtColumns+` FROM external_debts
WHERE deleted_at IS NULL
  AND ($1 = 0 OR partner_id = $1)
  AND ($2 = '' OR type = $2)
ORDER BY issued_at DESC, id DESC LIMIT $3 OFFSET $4`,
		req.PartnerID, string(req.Type), req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExternalDebt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *pgRepository) GetDebt(ctx context.Context, id int64) (ExternalDebt, error) {
	return scanDebt(r.pool.QueryRow(ctx,
		`SELECT `+debtColumns+` FROM external_debts WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *pgRepository) CreateDebt(ctx context.Context, in CreateDebtInput) (ExternalDebt, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO external_debts
(number, partner_id, type, currency_id, total_amount, issued_at, description)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
RETURNING `+debtColumns,
		in.Number, in.PartnerID, in.Type, in.CurrencyID, in.TotalAmount, in.IssuedAt, in.Description)
	d, err := scanDebt(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ExternalDebt{}, shared.ErrDuplicate
	}
	return d, err
}

const paymentColumns = `id, partner_id, type, currency_id, exchange_rate, amount, primary_amount,
 payment_date, deleted_at, created_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.PartnerID, &p.Type, &p.CurrencyID, &p.ExchangeRate, &p.Amount,
		&p.PrimaryAmount, &p.PaymentDate, &p.DeletedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

func (r *pgRepository) ListPayments(ctx context.Context, partnerID int64, limit, offset int) ([]Payment, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM debt_payments
WHERE deleted_at IS NULL AND ($1 = 0 OR partner_id = $1)
ORDER BY payment_date DESC, id DESC LIMIT $2 OFFSET $3`, partnerID, limit, offset)
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

func (r *pgRepository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM debt_payments WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return Payment{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, payment_id, debt_id, amount, primary_amount
FROM debt_payment_details WHERE payment_id = $1 ORDER BY id`, id)
	if err != nil {
		return Payment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d PaymentDetail
		if err := rows.Scan(&d.ID, &d.PaymentID, &d.DebtID, &d.Amount, &d.PrimaryAmount); err != nil {
			return Payment{}, err
		}
		p.Details = append(p.Details, d)
	}
	return p, rows.Err()
}

const allocatedTotalSQL = `SELECT COALESCE(SUM(d.amount), 0)
FROM debt_payment_details d
JOIN debt_payments p ON p.id = d.payment_id
JOIN external_debts e ON e.id = d.debt_id
WHERE d.debt_id = $1 AND p.type = e.type
AND p.deleted_at IS NULL AND ($2 = 0 OR p.id <> $2)`

func (r *pgRepository) AllocatedTotal(ctx context.Context, debtID, excludePaymentID int64) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, allocatedTotalSQL, debtID, excludePaymentID).Scan(&total)
	return total, err
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) GetDebtsForUpdate(ctx context.Context, ids []int64) (map[int64]ExternalDebt, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+debtColumns+` FROM external_debts
WHERE id = ANY($1) AND deleted_at IS NULL FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]ExternalDebt, len(ids))
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

func (r *pgTxRepository) AllocatedTotalTx(ctx context.Context, debtID int64) (float64, error) {
	var total float64
	err := r.tx.QueryRow(ctx, allocatedTotalSQL, debtID, 0).Scan(&total)
	return total, err
}

func (r *pgTxRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO debt_payments
(partner_id, type, currency_id, exchange_rate, amount, primary_amount, payment_date)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		p.PartnerID, p.Type, p.CurrencyID, p.ExchangeRate, p.Amount, p.PrimaryAmount,
		p.PaymentDate).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	for i := range p.Details {
		d := &p.Details[i]
		d.PaymentID = p.ID
		if err := r.tx.QueryRow(ctx, `INSERT INTO debt_payment_details
(payment_id, debt_id, amount, primary_amount)
VALUES ($1, $2, $3, $4) RETURNING id`,
			d.PaymentID, d.DebtID, d.Amount, d.PrimaryAmount).Scan(&d.ID); err != nil {
			return Payment{}, err
		}
	}
	return p, nil
}

func (r *pgTxRepository) SoftDeleteDebt(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE external_debts SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDebtNotFound
	}
	return nil
}

func (r *pgTxRepository) SoftDeletePayment(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE debt_payments SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *pgTxRepository) CountDebtAllocations(ctx context.Context, debtID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT count(*) FROM debt_payment_details d
JOIN debt_payments p ON p.id = d.payment_id
WHERE d.debt_id = $1 AND p.deleted_at IS NULL`, debtID).Scan(&n)
	return n, err
}
