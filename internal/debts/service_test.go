package debts

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

type memoryDebtRepo struct {
	debts    map[int64]ExternalDebt
	payments map[int64]Payment
	nextID   int64
}

func newMemoryDebtRepo() *memoryDebtRepo {
	return &memoryDebtRepo{debts: make(map[int64]ExternalDebt), payments: make(map[int64]Payment)}
}

func (r *memoryDebtRepo) clone() *memoryDebtRepo {
	staged := newMemoryDebtRepo()
	for id, d := range r.debts {
		staged.debts[id] = d
	}
	for id, p := range r.payments {
		cp := p
		cp.Details = append([]PaymentDetail(nil), p.Details...)
		staged.payments[id] = cp
	}
	staged.nextID = r.nextID
	return staged
}

func (r *memoryDebtRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := r.clone()
	if err := fn(ctx, &memoryDebtTx{repo: staged}); err != nil {
		return err
	}
	*r = *staged
	return nil
}

func (r *memoryDebtRepo) ListDebts(ctx context.Context, req ListDebtsRequest) ([]ExternalDebt, error) {
	var out []ExternalDebt
	for _, d := range r.debts {
		if d.DeletedAt != nil {
			continue
		}
		if req.PartnerID != 0 && d.PartnerID != req.PartnerID {
			continue
		}
		if req.Type != "" && d.Type != req.Type {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryDebtRepo) GetDebt(ctx context.Context, id int64) (ExternalDebt, error) {
	d, ok := r.debts[id]
	if !ok || d.DeletedAt != nil {
		return ExternalDebt{}, ErrDebtNotFound
	}
	return d, nil
}

func (r *memoryDebtRepo) CreateDebt(ctx context.Context, in CreateDebtInput) (ExternalDebt, error) {
	r.nextID++
	d := ExternalDebt{
		ID:          r.nextID,
		Number:      in.Number,
		PartnerID:   in.PartnerID,
		Type:        in.Type,
		CurrencyID:  in.CurrencyID,
		TotalAmount: in.TotalAmount,
		IssuedAt:    in.IssuedAt,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	r.debts[d.ID] = d
	return d, nil
}

func (r *memoryDebtRepo) ListPayments(ctx context.Context, partnerID int64, limit, offset int) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.DeletedAt != nil {
			continue
		}
		if partnerID != 0 && p.PartnerID != partnerID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryDebtRepo) GetPayment(ctx context.Context, id int64) (Payment, error) {
	p, ok := r.payments[id]
	if !ok || p.DeletedAt != nil {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (r *memoryDebtRepo) allocatedTotal(debtID, excludePaymentID int64) float64 {
	debt := r.debts[debtID]
	var total float64
	for _, p := range r.payments {
		if p.DeletedAt != nil || p.ID == excludePaymentID || p.Type != debt.Type {
			continue
		}
		for _, d := range p.Details {
			if d.DebtID == debtID {
				total += d.Amount
			}
		}
	}
	return total
}

func (r *memoryDebtRepo) AllocatedTotal(ctx context.Context, debtID, excludePaymentID int64) (float64, error) {
	return r.allocatedTotal(debtID, excludePaymentID), nil
}

type memoryDebtTx struct {
	repo *memoryDebtRepo
}

func (t *memoryDebtTx) GetDebtsForUpdate(ctx context.Context, ids []int64) (map[int64]ExternalDebt, error) {
	out := make(map[int64]ExternalDebt, len(ids))
	for _, id := range ids {
		if d, ok := t.repo.debts[id]; ok && d.DeletedAt == nil {
			out[id] = d
		}
	}
	return out, nil
}

func (t *memoryDebtTx) AllocatedTotalTx(ctx context.Context, debtID int64) (float64, error) {
	return t.repo.allocatedTotal(debtID, 0), nil
}

func (t *memoryDebtTx) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	t.repo.nextID++
	p.ID = t.repo.nextID
	p.CreatedAt = time.Now()
	for i := range p.Details {
		t.repo.nextID++
		p.Details[i].ID = t.repo.nextID
		p.Details[i].PaymentID = p.ID
	}
	t.repo.payments[p.ID] = p
	return p, nil
}

func (t *memoryDebtTx) SoftDeleteDebt(ctx context.Context, id int64, at time.Time) error {
	d, ok := t.repo.debts[id]
	if !ok || d.DeletedAt != nil {
		return ErrDebtNotFound
	}
	d.DeletedAt = &at
	t.repo.debts[id] = d
	return nil
}

func (t *memoryDebtTx) SoftDeletePayment(ctx context.Context, id int64, at time.Time) error {
	p, ok := t.repo.payments[id]
	if !ok || p.DeletedAt != nil {
		return ErrPaymentNotFound
	}
	p.DeletedAt = &at
	t.repo.payments[id] = p
	return nil
}

func (t *memoryDebtTx) CountDebtAllocations(ctx context.Context, debtID int64) (int, error) {
	n := 0
	for _, p := range t.repo.payments {
		if p.DeletedAt != nil {
			continue
		}
		for _, d := range p.Details {
			if d.DebtID == debtID {
				n++
			}
		}
	}
	return n, nil
}

type captureSink struct {
	events []Payment
	err    error
}

func (s *captureSink) PaymentCreated(ctx context.Context, p Payment) error {
	s.events = append(s.events, p)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedDebt(t *testing.T, svc *Service, partnerID int64, dt DebtType, total float64) ExternalDebt {
	t.Helper()
	d, err := svc.CreateDebt(context.Background(), CreateDebtInput{
		Number:      "INV-001",
		PartnerID:   partnerID,
		Type:        dt,
		CurrencyID:  1,
		TotalAmount: total,
		IssuedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return d
}

func allocateInput(partnerID int64, dt DebtType, lines ...AllocationLine) AllocateInput {
	return AllocateInput{
		PartnerID:    partnerID,
		Type:         dt,
		CurrencyID:   1,
		ExchangeRate: 1,
		PaymentDate:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Lines:        lines,
	}
}

func TestAllocateCreatesHeaderAndDetails(t *testing.T) {
	repo := newMemoryDebtRepo()
	sink := &captureSink{}
	svc := NewService(repo, sink, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	in := allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 200_000})
	in.ExchangeRate = 15_500

	p, err := svc.Allocate(context.Background(), in)
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	require.InDelta(t, 200_000, p.Amount, 1e-9)
	require.InDelta(t, 200_000*15_500, p.PrimaryAmount, 1e-6)
	require.Len(t, p.Details, 1)
	require.InDelta(t, 200_000*15_500, p.Details[0].PrimaryAmount, 1e-6)

	require.Len(t, sink.events, 1)
	require.Equal(t, p.ID, sink.events[0].ID)
}

func TestAllocateRejectsOverpayAgainstPrior(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 300_000}))
	require.NoError(t, err)

	// 300,000 already allocated; only 200,000 remains
	_, err = svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 250_000}))
	require.ErrorIs(t, err, ErrOverpay)

	remaining, err := svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.InDelta(t, 200_000, remaining, 1e-9)
}

func TestAllocateSumsSplitLinesBeforeOverpayCheck(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(), allocateInput(7, TypePayable,
		AllocationLine{DebtID: debt.ID, Amount: 300_000},
		AllocationLine{DebtID: debt.ID, Amount: 300_000},
	))
	require.ErrorIs(t, err, ErrOverpay)
	require.Empty(t, repo.payments)
}

func TestAllocateAllowsExactSettlement(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 500_000}))
	require.NoError(t, err)

	remaining, err := svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestAllocateRejectsTypeMismatch(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypeReceivable, 500_000)

	_, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 100_000}))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAllocateRejectsCrossPartner(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(),
		allocateInput(8, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 100_000}))
	require.ErrorIs(t, err, ErrCrossPartner)
}

func TestAllocateRejectsUnknownDebtAndPersistsNothing(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(), allocateInput(7, TypePayable,
		AllocationLine{DebtID: debt.ID, Amount: 100_000},
		AllocationLine{DebtID: 999, Amount: 50_000},
	))
	require.ErrorIs(t, err, ErrDebtNotFound)
	require.Empty(t, repo.payments)

	remaining, err := svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.InDelta(t, 500_000, remaining, 1e-9)
}

func TestAllocateValidatesInput(t *testing.T) {
	svc := NewService(newMemoryDebtRepo(), nil, testLogger())
	cases := []struct {
		name   string
		mutate func(*AllocateInput)
	}{
		{"no lines", func(in *AllocateInput) { in.Lines = nil }},
		{"zero amount line", func(in *AllocateInput) { in.Lines[0].Amount = 0 }},
		{"zero rate", func(in *AllocateInput) { in.ExchangeRate = 0 }},
		{"bad type", func(in *AllocateInput) { in.Type = "LOAN" }},
		{"no partner", func(in *AllocateInput) { in.PartnerID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := allocateInput(7, TypePayable, AllocationLine{DebtID: 1, Amount: 100})
			tc.mutate(&in)
			_, err := svc.Allocate(context.Background(), in)
			require.ErrorIs(t, err, mdshared.ErrValidation)
		})
	}
}

func TestSinkFailureDoesNotFailAllocation(t *testing.T) {
	repo := newMemoryDebtRepo()
	sink := &captureSink{err: errors.New("broker down")}
	svc := NewService(repo, sink, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	_, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 100_000}))
	require.NoError(t, err)
	require.Len(t, repo.payments, 1)
}

func TestRemainingIgnoresDeletedPaymentsAndExclusions(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	p1, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 200_000}))
	require.NoError(t, err)
	p2, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 100_000}))
	require.NoError(t, err)

	remaining, err := svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.InDelta(t, 200_000, remaining, 1e-9)

	remaining, err = svc.Remaining(context.Background(), debt.ID, p2.ID)
	require.NoError(t, err)
	require.InDelta(t, 300_000, remaining, 1e-9)

	require.NoError(t, svc.DeletePayment(context.Background(), p1.ID))
	remaining, err = svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.InDelta(t, 400_000, remaining, 1e-9)
}

func TestRemainingCountsOnlyPaymentsOfTheDebtsType(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	// a backfilled receivable payment referencing a payable debt must not
	// reduce the payable balance
	repo.nextID++
	repo.payments[repo.nextID] = Payment{
		ID:        repo.nextID,
		PartnerID: 7,
		Type:      TypeReceivable,
		Amount:    300_000,
		Details:   []PaymentDetail{{DebtID: debt.ID, Amount: 300_000}},
	}

	remaining, err := svc.Remaining(context.Background(), debt.ID, 0)
	require.NoError(t, err)
	require.InDelta(t, 500_000, remaining, 1e-9)

	// the full balance is still allocatable by a payment of the right type
	_, err = svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 500_000}))
	require.NoError(t, err)
}

func TestDeleteDebtBlockedByActiveAllocations(t *testing.T) {
	repo := newMemoryDebtRepo()
	svc := NewService(repo, nil, testLogger())
	debt := seedDebt(t, svc, 7, TypePayable, 500_000)

	p, err := svc.Allocate(context.Background(),
		allocateInput(7, TypePayable, AllocationLine{DebtID: debt.ID, Amount: 100_000}))
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteDebt(context.Background(), debt.ID), ErrDebtHasPayments)

	require.NoError(t, svc.DeletePayment(context.Background(), p.ID))
	require.NoError(t, svc.DeleteDebt(context.Background(), debt.ID))
	_, err = svc.GetDebt(context.Background(), debt.ID)
	require.ErrorIs(t, err, ErrDebtNotFound)
}
