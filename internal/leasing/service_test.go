package leasing

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLeaseRepo struct {
	leases   map[int64]Lease
	payments map[int64]Payment
	nextID   int64
}

func newMemoryLeaseRepo() *memoryLeaseRepo {
	return &memoryLeaseRepo{leases: make(map[int64]Lease), payments: make(map[int64]Payment)}
}

func (r *memoryLeaseRepo) clone() *memoryLeaseRepo {
	staged := newMemoryLeaseRepo()
	for id, l := range r.leases {
		staged.leases[id] = l
	}
	for id, p := range r.payments {
		staged.payments[id] = p
	}
	staged.nextID = r.nextID
	return staged
}

func (r *memoryLeaseRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	staged := r.clone()
	if err := fn(ctx, &memoryLeaseTx{repo: staged}); err != nil {
		return err
	}
	*r = *staged
	return nil
}

func (r *memoryLeaseRepo) List(ctx context.Context, limit, offset int) ([]Lease, error) {
	var out []Lease
	for _, l := range r.leases {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryLeaseRepo) Get(ctx context.Context, id int64) (Lease, error) {
	l, ok := r.leases[id]
	if !ok {
		return Lease{}, ErrLeaseNotFound
	}
	return l, nil
}

func (r *memoryLeaseRepo) GetByAsset(ctx context.Context, assetID int64) (Lease, error) {
	for _, l := range r.leases {
		if l.AssetID == assetID {
			return l, nil
		}
	}
	return Lease{}, ErrLeaseNotFound
}

func (r *memoryLeaseRepo) ListPayments(ctx context.Context, leaseID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range r.payments {
		if p.LeaseID == leaseID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *memoryLeaseRepo) GetPayment(ctx context.Context, leaseID, paymentID int64) (Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok || p.LeaseID != leaseID {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

type memoryLeaseTx struct {
	repo *memoryLeaseRepo
}

func (t *memoryLeaseTx) InsertLease(ctx context.Context, l Lease) (Lease, error) {
	for _, existing := range t.repo.leases {
		if existing.AssetID == l.AssetID {
			return Lease{}, ErrAssetLeased
		}
	}
	t.repo.nextID++
	l.ID = t.repo.nextID
	t.repo.leases[l.ID] = l
	return l, nil
}

func (t *memoryLeaseTx) UpdateLease(ctx context.Context, l Lease) error {
	if _, ok := t.repo.leases[l.ID]; !ok {
		return ErrLeaseNotFound
	}
	t.repo.leases[l.ID] = l
	return nil
}

func (t *memoryLeaseTx) DeleteLease(ctx context.Context, id int64) error {
	if _, ok := t.repo.leases[id]; !ok {
		return ErrLeaseNotFound
	}
	delete(t.repo.leases, id)
	return nil
}

func (t *memoryLeaseTx) GetLeaseForUpdate(ctx context.Context, id int64) (Lease, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryLeaseTx) CountPaidPayments(ctx context.Context, leaseID int64) (int, error) {
	n := 0
	for _, p := range t.repo.payments {
		if p.LeaseID == leaseID && p.Status == StatusPaid {
			n++
		}
	}
	return n, nil
}

func (t *memoryLeaseTx) DeletePayments(ctx context.Context, leaseID int64) error {
	for id, p := range t.repo.payments {
		if p.LeaseID == leaseID {
			delete(t.repo.payments, id)
		}
	}
	return nil
}

func (t *memoryLeaseTx) InsertPayments(ctx context.Context, leaseID int64, payments []Payment) error {
	for _, p := range payments {
		t.repo.nextID++
		p.ID = t.repo.nextID
		p.LeaseID = leaseID
		t.repo.payments[p.ID] = p
	}
	return nil
}

func (t *memoryLeaseTx) SetPaymentStatus(ctx context.Context, paymentID int64, status string, paidAt *time.Time) error {
	p, ok := t.repo.payments[paymentID]
	if !ok {
		return ErrPaymentNotFound
	}
	p.Status = status
	p.PaidAt = paidAt
	t.repo.payments[paymentID] = p
	return nil
}

func validLeaseInput() LeaseInput {
	return LeaseInput{
		AssetID:         1,
		LessorPartnerID: 4,
		CurrencyID:      1,
		TotalObligation: 24_000_000,
		AnnualRatePct:   12,
		PaymentAmount:   1_000_000,
		Frequency:       FrequencyMonthly,
		StartDate:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2027, 12, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateMaterializesSchedule(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)

	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)
	require.NotZero(t, lease.ID)

	payments, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	// one installment per month across the lease window
	require.Len(t, payments, 36)
	require.InDelta(t, 760_000, payments[0].Principal, 1e-6)
}

func TestCreateRejectsSecondLeaseOnAsset(t *testing.T) {
	svc := NewService(newMemoryLeaseRepo())
	_, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validLeaseInput())
	require.ErrorIs(t, err, ErrAssetLeased)
}

func TestUpdateRegeneratesScheduleOnTermChange(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)
	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)

	in := validLeaseInput()
	in.PaymentAmount = 2_000_000
	_, err = svc.Update(context.Background(), lease.ID, in)
	require.NoError(t, err)

	payments, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	require.InDelta(t, 2_000_000, payments[0].Amount, 1e-6)
	for _, p := range payments {
		require.Equal(t, StatusPending, p.Status)
	}
}

func TestUpdateKeepsScheduleWhenTermsUnchanged(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)
	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)

	before, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), lease.ID, before[0].ID, time.Now())
	require.NoError(t, err)

	in := validLeaseInput()
	in.LessorPartnerID = 99
	updated, err := svc.Update(context.Background(), lease.ID, in)
	require.NoError(t, err)
	require.Equal(t, int64(99), updated.LessorPartnerID)

	after, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	require.Equal(t, before[0].ID, after[0].ID)
	require.Equal(t, StatusPaid, after[0].Status)
}

func TestUpdateRefusesTermChangeAfterPayment(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)
	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)

	payments, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), lease.ID, payments[0].ID, time.Now())
	require.NoError(t, err)

	in := validLeaseInput()
	in.PaymentAmount = 2_000_000
	_, err = svc.Update(context.Background(), lease.ID, in)
	require.ErrorIs(t, err, ErrHasPaidPayments)
}

func TestRecordAndRevertPayment(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)
	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)

	payments, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)

	paid, err := svc.RecordPayment(context.Background(), lease.ID, payments[0].ID, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.RecordPayment(context.Background(), lease.ID, payments[0].ID, time.Now())
	require.ErrorIs(t, err, ErrNotPending)

	reverted, err := svc.RevertPayment(context.Background(), lease.ID, payments[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, reverted.Status)
	require.Nil(t, reverted.PaidAt)

	_, err = svc.RevertPayment(context.Background(), lease.ID, payments[0].ID)
	require.ErrorIs(t, err, ErrNotPaid)
}

func TestDeleteRefusedAfterPayment(t *testing.T) {
	repo := newMemoryLeaseRepo()
	svc := NewService(repo)
	lease, err := svc.Create(context.Background(), validLeaseInput())
	require.NoError(t, err)

	payments, err := svc.Payments(context.Background(), lease.ID)
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), lease.ID, payments[0].ID, time.Now())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), lease.ID), ErrHasPaidPayments)

	_, err = svc.RevertPayment(context.Background(), lease.ID, payments[0].ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), lease.ID))
	_, err = svc.Get(context.Background(), lease.ID)
	require.ErrorIs(t, err, ErrLeaseNotFound)
}
