package leasing

import (
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Frequency is the payment cadence of a lease.
type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyAnnual    Frequency = "ANNUAL"
)

// Months returns the number of months between consecutive installments.
func (f Frequency) Months() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyAnnual:
		return 12
	default:
		return 1
	}
}

func (f Frequency) valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}
	return false
}

// Payment statuses.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

// Lease ties an asset to a financed payment plan. An asset carries at most
// one lease.
type Lease struct {
	ID              int64     `json:"id"`
	AssetID         int64     `json:"asset_id"`
	LessorPartnerID int64     `json:"lessor_partner_id"`
	CurrencyID      int64     `json:"currency_id"`
	TotalObligation float64   `json:"total_obligation"`
	AnnualRatePct   float64   `json:"annual_rate_pct"`
	PaymentAmount   float64   `json:"payment_amount"`
	Frequency       Frequency `json:"frequency"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Payment is one installment of a lease schedule. Amount always equals
// Principal plus Interest.
type Payment struct {
	ID        int64      `json:"id"`
	LeaseID   int64      `json:"lease_id"`
	Seq       int        `json:"seq"`
	DueDate   time.Time  `json:"due_date"`
	Amount    float64    `json:"amount"`
	Principal float64    `json:"principal"`
	Interest  float64    `json:"interest"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// LeaseInput carries the financial terms for creating or updating a lease.
type LeaseInput struct {
	AssetID         int64
	LessorPartnerID int64
	CurrencyID      int64
	TotalObligation float64
	AnnualRatePct   float64
	PaymentAmount   float64
	Frequency       Frequency
	StartDate       time.Time
	EndDate         time.Time
}

// termsChanged reports whether the update requires regenerating the
// schedule. Lessor and currency edits keep the existing installments.
func (in LeaseInput) termsChanged(l Lease) bool {
	return in.TotalObligation != l.TotalObligation ||
		in.AnnualRatePct != l.AnnualRatePct ||
		in.PaymentAmount != l.PaymentAmount ||
		in.Frequency != l.Frequency ||
		!in.StartDate.Equal(l.StartDate) ||
		!in.EndDate.Equal(l.EndDate)
}

// Domain errors.
var (
	ErrLeaseNotFound   = fmt.Errorf("lease %w", shared.ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("lease payment %w", shared.ErrNotFound)
	ErrAssetLeased     = fmt.Errorf("%w: asset already has a lease", shared.ErrDuplicate)
	ErrHasPaidPayments = fmt.Errorf("%w: lease has paid installments", shared.ErrUnprocessable)
	ErrNotPending      = fmt.Errorf("%w: payment is not pending", shared.ErrUnprocessable)
	ErrNotPaid         = fmt.Errorf("%w: payment is not paid", shared.ErrUnprocessable)
)
