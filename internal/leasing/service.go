package leasing

import (
	"context"
	"time"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// Service manages leases and their installment schedules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Lease, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Lease, error) {
	if id <= 0 {
		return Lease{}, mdshared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByAsset(ctx context.Context, assetID int64) (Lease, error) {
	return s.repo.GetByAsset(ctx, assetID)
}

func (s *Service) Payments(ctx context.Context, leaseID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, leaseID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, leaseID)
}

// Create registers a lease and materializes its full installment schedule
// in the same transaction.
func (s *Service) Create(ctx context.Context, in LeaseInput) (Lease, error) {
	if in.AssetID <= 0 {
		return Lease{}, mdshared.Invalid("asset is required")
	}
	lease := leaseFromInput(in)
	schedule, err := GenerateSchedule(lease)
	if err != nil {
		return Lease{}, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lease, err = tx.InsertLease(ctx, lease)
		if err != nil {
			return err
		}
		return tx.InsertPayments(ctx, lease.ID, schedule)
	})
	if err != nil {
		return Lease{}, err
	}
	return lease, nil
}

// Update edits the lease. When a financial term changes the pending
// schedule is thrown away and regenerated; a lease with paid installments
// refuses term changes so settled history is never rewritten.
func (s *Service) Update(ctx context.Context, id int64, in LeaseInput) (Lease, error) {
	var updated Lease
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetLeaseForUpdate(ctx, id)
		if err != nil {
			return err
		}

		updated = leaseFromInput(in)
		updated.ID = current.ID
		updated.AssetID = current.AssetID
		updated.CreatedAt = current.CreatedAt

		if !in.termsChanged(current) {
			return tx.UpdateLease(ctx, updated)
		}

		paid, err := tx.CountPaidPayments(ctx, id)
		if err != nil {
			return err
		}
		if paid > 0 {
			return ErrHasPaidPayments
		}

		schedule, err := GenerateSchedule(updated)
		if err != nil {
			return err
		}
		if err := tx.UpdateLease(ctx, updated); err != nil {
			return err
		}
		if err := tx.DeletePayments(ctx, id); err != nil {
			return err
		}
		return tx.InsertPayments(ctx, id, schedule)
	})
	if err != nil {
		return Lease{}, err
	}
	return updated, nil
}

// Delete removes a lease and its schedule. A lease with paid installments
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetLeaseForUpdate(ctx, id); err != nil {
			return err
		}
		paid, err := tx.CountPaidPayments(ctx, id)
		if err != nil {
			return err
		}
		if paid > 0 {
			return ErrHasPaidPayments
		}
		if err := tx.DeletePayments(ctx, id); err != nil {
			return err
		}
		return tx.DeleteLease(ctx, id)
	})
}

// RecordPayment settles a pending installment.
func (s *Service) RecordPayment(ctx context.Context, leaseID, paymentID int64, paidAt time.Time) (Payment, error) {
	p, err := s.repo.GetPayment(ctx, leaseID, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if p.Status != StatusPending {
		return Payment{}, ErrNotPending
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetPaymentStatus(ctx, paymentID, StatusPaid, &paidAt)
	})
	if err != nil {
		return Payment{}, err
	}
	p.Status = StatusPaid
	p.PaidAt = &paidAt
	return p, nil
}

// RevertPayment returns a settled installment to pending, for correcting a
// payment recorded in error.
func (s *Service) RevertPayment(ctx context.Context, leaseID, paymentID int64) (Payment, error) {
	p, err := s.repo.GetPayment(ctx, leaseID, paymentID)
	if err != nil {
		return Payment{}, err
	}
	if p.Status != StatusPaid {
		return Payment{}, ErrNotPaid
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetPaymentStatus(ctx, paymentID, StatusPending, nil)
	})
	if err != nil {
		return Payment{}, err
	}
	p.Status = StatusPending
	p.PaidAt = nil
	return p, nil
}

func leaseFromInput(in LeaseInput) Lease {
	return Lease{
		AssetID:         in.AssetID,
		LessorPartnerID: in.LessorPartnerID,
		CurrencyID:      in.CurrencyID,
		TotalObligation: in.TotalObligation,
		AnnualRatePct:   in.AnnualRatePct,
		PaymentAmount:   in.PaymentAmount,
		Frequency:       in.Frequency,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
	}
}
