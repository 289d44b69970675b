package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Repository encapsulates journal persistence.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Journal, error)
	Get(ctx context.Context, id int64) (Journal, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes writes available within a transaction.
type TxRepository interface {
	InsertJournal(ctx context.Context, j Journal) (Journal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Journal, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT id, number, date, type, description, source_module, source_id, created_at
FROM journals ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Journal
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.ID, &j.Number, &j.Date, &j.Type, &j.Description, &j.SourceModule, &j.SourceID, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Journal, error) {
	var j Journal
	err := r.pool.QueryRow(ctx, `SELECT id, number, date, type, description, source_module, source_id, created_at
FROM journals WHERE id = $1`, id).
		Scan(&j.ID, &j.Number, &j.Date, &j.Type, &j.Description, &j.SourceModule, &j.SourceID, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Journal{}, shared.ErrNotFound
	}
	if err != nil {
		return Journal{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, journal_id, account_id, debit, credit, currency_id, exchange_rate, primary_debit, primary_credit
FROM journal_entries WHERE journal_id = $1 ORDER BY id`, id)
	if err != nil {
		return Journal{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.JournalID, &e.AccountID, &e.Debit, &e.Credit, &e.CurrencyID, &e.ExchangeRate, &e.PrimaryDebit, &e.PrimaryCredit); err != nil {
			return Journal{}, err
		}
		j.Entries = append(j.Entries, e)
	}
	return j, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertJournal(ctx context.Context, j Journal) (Journal, error) {
	return InsertJournalTx(ctx, r.tx, j)
}

// InsertJournalTx persists a journal header and its lines on an existing
// transaction. The depreciation batch shares this so schedule updates and
// journal writes commit or roll back together.
func InsertJournalTx(ctx context.Context, tx pgx.Tx, j Journal) (Journal, error) {
	err := tx.QueryRow(ctx, `INSERT INTO journals (date, type, description, source_module, source_id)
VALUES ($1, $2, $3, $4, $5) RETURNING id, number, created_at`,
		j.Date, j.Type, j.Description, j.SourceModule, j.SourceID).
		Scan(&j.ID, &j.Number, &j.CreatedAt)
	if err != nil {
		return Journal{}, err
	}
	for i := range j.Entries {
		e := &j.Entries[i]
		e.JournalID = j.ID
		if err := tx.QueryRow(ctx, `INSERT INTO journal_entries
(journal_id, account_id, debit, credit, currency_id, exchange_rate, primary_debit, primary_credit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			e.JournalID, e.AccountID, e.Debit, e.Credit, e.CurrencyID, e.ExchangeRate, e.PrimaryDebit, e.PrimaryCredit).
			Scan(&e.ID); err != nil {
			return Journal{}, err
		}
	}
	return j, nil
}
