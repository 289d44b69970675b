package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type memoryLedgerRepo struct {
	journals map[int64]Journal
	nextID   int64
	failTx   bool
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{journals: make(map[int64]Journal)}
}

func (r *memoryLedgerRepo) List(ctx context.Context, limit, offset int) ([]Journal, error) {
	var out []Journal
	for _, j := range r.journals {
		out = append(out, j)
	}
	return out, nil
}

func (r *memoryLedgerRepo) Get(ctx context.Context, id int64) (Journal, error) {
	j, ok := r.journals[id]
	if !ok {
		return Journal{}, shared.ErrNotFound
	}
	return j, nil
}

func (r *memoryLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := newMemoryLedgerRepo()
	staged.nextID = r.nextID
	if err := fn(ctx, &memoryLedgerTx{repo: staged}); err != nil {
		return err
	}
	for id, j := range staged.journals {
		r.journals[id] = j
	}
	r.nextID = staged.nextID
	return nil
}

type memoryLedgerTx struct {
	repo *memoryLedgerRepo
}

func (t *memoryLedgerTx) InsertJournal(ctx context.Context, j Journal) (Journal, error) {
	t.repo.nextID++
	j.ID = t.repo.nextID
	j.Number = "JRN-" + time.Now().Format("20060102") + "-test"
	for i := range j.Entries {
		j.Entries[i].JournalID = j.ID
		j.Entries[i].ID = j.ID*10 + int64(i)
	}
	t.repo.journals[j.ID] = j
	return j, nil
}

func validPostingInput() PostingInput {
	return PostingInput{
		Date:            time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Type:            TypeGeneral,
		Description:     "rent accrual June",
		SourceModule:    "ledger",
		SourceID:        uuid.New(),
		DebitAccountID:  510,
		CreditAccountID: 210,
		Amount:          1_000_000,
		CurrencyID:      1,
		ExchangeRate:    1,
	}
}

func TestBuildProducesBalancedTwoLineJournal(t *testing.T) {
	in := validPostingInput()
	in.Amount = 250_000
	in.ExchangeRate = 15_500

	j, err := Build(in)
	require.NoError(t, err)
	require.Len(t, j.Entries, 2)

	debitLine, creditLine := j.Entries[0], j.Entries[1]
	require.Equal(t, in.DebitAccountID, debitLine.AccountID)
	require.Equal(t, in.Amount, debitLine.Debit)
	require.Zero(t, debitLine.Credit)
	require.Equal(t, in.CreditAccountID, creditLine.AccountID)
	require.Equal(t, in.Amount, creditLine.Credit)
	require.Zero(t, creditLine.Debit)

	require.InDelta(t, in.Amount*in.ExchangeRate, debitLine.PrimaryDebit, 1e-9)
	require.InDelta(t, in.Amount*in.ExchangeRate, creditLine.PrimaryCredit, 1e-9)
	require.Equal(t, debitLine.Debit, creditLine.Credit)
	require.Equal(t, debitLine.PrimaryDebit, creditLine.PrimaryCredit)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*PostingInput)
		wantErr error
	}{
		{"zero amount", func(in *PostingInput) { in.Amount = 0 }, ErrNonPositiveAmount},
		{"negative amount", func(in *PostingInput) { in.Amount = -5 }, ErrNonPositiveAmount},
		{"same account", func(in *PostingInput) { in.CreditAccountID = in.DebitAccountID }, ErrSameAccount},
		{"missing debit account", func(in *PostingInput) { in.DebitAccountID = 0 }, ErrAccountNotConfigured},
		{"missing credit account", func(in *PostingInput) { in.CreditAccountID = 0 }, ErrAccountNotConfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validPostingInput()
			tc.mutate(&in)
			_, err := Build(in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPostPersistsNothingOnValidationFailure(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)

	in := validPostingInput()
	in.DebitAccountID = 0
	_, err := svc.Post(context.Background(), in)
	require.ErrorIs(t, err, ErrAccountNotConfigured)
	require.Empty(t, repo.journals)
}

func TestPostPersistsJournalWithEntries(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo)

	j, err := svc.Post(context.Background(), validPostingInput())
	require.NoError(t, err)
	require.NotZero(t, j.ID)
	require.Len(t, j.Entries, 2)
	require.Len(t, repo.journals, 1)
}
