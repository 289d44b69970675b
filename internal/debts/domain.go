package debts

import (
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// DebtType separates what the company owes from what it is owed.
type DebtType string

const (
	TypePayable    DebtType = "PAYABLE"
	TypeReceivable DebtType = "RECEIVABLE"
)

func (t DebtType) valid() bool {
	return t == TypePayable || t == TypeReceivable
}

// ExternalDebt is an obligation against a partner, settled over time by
// allocated payments. Soft-deleted debts keep their rows but drop out of
// every allocation computation.
type ExternalDebt struct {
	ID          int64      `json:"id"`
	Number      string     `json:"number"`
	PartnerID   int64      `json:"partner_id"`
	Type        DebtType   `json:"type"`
	CurrencyID  int64      `json:"currency_id"`
	TotalAmount float64    `json:"total_amount"`
	IssuedAt    time.Time  `json:"issued_at"`
	Description string     `json:"description,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Payment is one settlement event against a partner, carrying detail lines
// that allocate its amount across that partner's debts.
type Payment struct {
	ID            int64           `json:"id"`
	PartnerID     int64           `json:"partner_id"`
	Type          DebtType        `json:"type"`
	CurrencyID    int64           `json:"currency_id"`
	ExchangeRate  float64         `json:"exchange_rate"`
	Amount        float64         `json:"amount"`
	PrimaryAmount float64         `json:"primary_amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Details       []PaymentDetail `json:"details,omitempty"`
}

// PaymentDetail allocates part of a payment to one debt.
type PaymentDetail struct {
	ID            int64   `json:"id"`
	PaymentID     int64   `json:"payment_id"`
	DebtID        int64   `json:"debt_id"`
	Amount        float64 `json:"amount"`
	PrimaryAmount float64 `json:"primary_amount"`
}

// AllocationLine is one requested debt allocation. Lines may repeat a debt;
// the overpay check sums them per debt before comparing.
type AllocationLine struct {
	DebtID int64
	Amount float64
}

// AllocateInput carries one payment and its allocation lines.
type AllocateInput struct {
	PartnerID    int64
	Type         DebtType
	CurrencyID   int64
	ExchangeRate float64
	PaymentDate  time.Time
	Lines        []AllocationLine
}

// CreateDebtInput registers a new external debt.
type CreateDebtInput struct {
	Number      string
	PartnerID   int64
	Type        DebtType
	CurrencyID  int64
	TotalAmount float64
	IssuedAt    time.Time
	Description string
}

// ListDebtsRequest filters debt listings.
type ListDebtsRequest struct {
	PartnerID int64
	Type      DebtType
	Limit     int
	Offset    int
}

// Domain errors. Allocation failures reject the whole batch.
var (
	ErrDebtNotFound    = fmt.Errorf("debt %w", shared.ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("debt payment %w", shared.ErrNotFound)
	ErrTypeMismatch    = fmt.Errorf("%w: debt type does not match payment type", shared.ErrUnprocessable)
	ErrCrossPartner    = fmt.Errorf("%w: allocation crosses partners", shared.ErrUnprocessable)
	ErrOverpay         = fmt.Errorf("%w: allocation exceeds remaining debt", shared.ErrUnprocessable)
	ErrDebtHasPayments = fmt.Errorf("%w: debt has active allocations", shared.ErrUnprocessable)
)
