package debts

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// EventSink receives the payment-created notification after the allocation
// transaction commits. Delivery is best effort; a sink failure never fails
// the allocation.
type EventSink interface {
	PaymentCreated(ctx context.Context, p Payment) error
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) PaymentCreated(context.Context, Payment) error { return nil }

const amountTolerance = 1e-5

// Service allocates partner payments across external debts.
type Service struct {
	repo Repository
	sink EventSink
	log  *slog.Logger
}

func NewService(repo Repository, sink EventSink, log *slog.Logger) *Service {
	if sink == nil {
		sink = NopSink{}
	}
	return &Service{repo: repo, sink: sink, log: log}
}

func (s *Service) ListDebts(ctx context.Context, req ListDebtsRequest) ([]ExternalDebt, error) {
	return s.repo.ListDebts(ctx, req)
}

func (s *Service) GetDebt(ctx context.Context, id int64) (ExternalDebt, error) {
	if id <= 0 {
		return ExternalDebt{}, mdshared.ErrInvalidID
	}
	return s.repo.GetDebt(ctx, id)
}

func (s *Service) CreateDebt(ctx context.Context, in CreateDebtInput) (ExternalDebt, error) {
	in.Number = strings.ToUpper(strings.TrimSpace(in.Number))
	switch {
	case in.Number == "":
		return ExternalDebt{}, mdshared.Invalid("debt number is required")
	case in.PartnerID <= 0:
		return ExternalDebt{}, mdshared.Invalid("partner is required")
	case !in.Type.valid():
		return ExternalDebt{}, mdshared.Invalid("debt type must be PAYABLE or RECEIVABLE")
	case in.CurrencyID <= 0:
		return ExternalDebt{}, mdshared.Invalid("currency is required")
	case in.TotalAmount <= 0:
		return ExternalDebt{}, mdshared.Invalid("total amount must be positive")
	}
	if in.IssuedAt.IsZero() {
		in.IssuedAt = time.Now()
	}
	return s.repo.CreateDebt(ctx, in)
}

// DeleteDebt soft-deletes a debt. Debts with active allocations are kept
// until their payments are deleted first.
func (s *Service) DeleteDebt(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.CountDebtAllocations(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDebtHasPayments
		}
		return tx.SoftDeleteDebt(ctx, id, time.Now())
	})
}

func (s *Service) ListPayments(ctx context.Context, partnerID int64, limit, offset int) ([]Payment, error) {
	return s.repo.ListPayments(ctx, partnerID, limit, offset)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, mdshared.ErrInvalidID
	}
	return s.repo.GetPayment(ctx, id)
}

// DeletePayment soft-deletes a payment, releasing its allocations back to
// the debts.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SoftDeletePayment(ctx, id, time.Now())
	})
}

// Allocate records one payment and distributes it across the partner's
// debts. Every check runs before any write and a single failing line
// rejects the whole batch. Lines naming the same debt are summed before the
// overpay comparison so a split allocation cannot slip past the remaining
// balance.
func (s *Service) Allocate(ctx context.Context, in AllocateInput) (Payment, error) {
	if err := validateAllocateInput(in); err != nil {
		return Payment{}, err
	}

	grouped := make(map[int64]float64)
	var debtIDs []int64
	for _, line := range in.Lines {
		if _, seen := grouped[line.DebtID]; !seen {
			debtIDs = append(debtIDs, line.DebtID)
		}
		grouped[line.DebtID] += line.Amount
	}
	sort.Slice(debtIDs, func(i, j int) bool { return debtIDs[i] < debtIDs[j] })

	var total float64
	for _, line := range in.Lines {
		total += line.Amount
	}

	payment := Payment{
		PartnerID:     in.PartnerID,
		Type:          in.Type,
		CurrencyID:    in.CurrencyID,
		ExchangeRate:  in.ExchangeRate,
		Amount:        total,
		PrimaryAmount: total * in.ExchangeRate,
		PaymentDate:   in.PaymentDate,
	}
	for _, line := range in.Lines {
		payment.Details = append(payment.Details, PaymentDetail{
			DebtID:        line.DebtID,
			Amount:        line.Amount,
			PrimaryAmount: line.Amount * in.ExchangeRate,
		})
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		debts, err := tx.GetDebtsForUpdate(ctx, debtIDs)
		if err != nil {
			return err
		}
		for _, id := range debtIDs {
			debt, ok := debts[id]
			if !ok {
				return ErrDebtNotFound
			}
			if debt.Type != in.Type {
				return ErrTypeMismatch
			}
			if debt.PartnerID != in.PartnerID {
				return ErrCrossPartner
			}
			prior, err := tx.AllocatedTotalTx(ctx, id)
			if err != nil {
				return err
			}
			if grouped[id]+prior > debt.TotalAmount+amountTolerance {
				return ErrOverpay
			}
		}

		payment, err = tx.InsertPayment(ctx, payment)
		return err
	})
	if err != nil {
		return Payment{}, err
	}

	if err := s.sink.PaymentCreated(ctx, payment); err != nil {
		s.log.WarnContext(ctx, "payment event delivery failed",
			slog.Int64("payment_id", payment.ID), slog.Any("error", err))
	}
	return payment, nil
}

// Remaining reports the unsettled portion of a debt, optionally ignoring
// one payment (used when re-validating an edit of that payment). Never
// negative.
func (s *Service) Remaining(ctx context.Context, debtID, excludePaymentID int64) (float64, error) {
	debt, err := s.repo.GetDebt(ctx, debtID)
	if err != nil {
		return 0, err
	}
	allocated, err := s.repo.AllocatedTotal(ctx, debtID, excludePaymentID)
	if err != nil {
		return 0, err
	}
	remaining := debt.TotalAmount - allocated
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func validateAllocateInput(in AllocateInput) error {
	switch {
	case in.PartnerID <= 0:
		return mdshared.Invalid("partner is required")
	case !in.Type.valid():
		return mdshared.Invalid("payment type must be PAYABLE or RECEIVABLE")
	case in.CurrencyID <= 0:
		return mdshared.Invalid("currency is required")
	case in.ExchangeRate <= 0:
		return mdshared.Invalid("exchange rate must be positive")
	case in.PaymentDate.IsZero():
		return mdshared.Invalid("payment date is required")
	case len(in.Lines) == 0:
		return mdshared.Invalid("at least one allocation line is required")
	}
	for _, line := range in.Lines {
		if line.DebtID <= 0 {
			return mdshared.Invalid("allocation lines require a debt")
		}
		if line.Amount <= 0 {
			return mdshared.Invalid("allocation amounts must be positive")
		}
	}
	return nil
}
