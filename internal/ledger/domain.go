package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// JournalType tags the origin of a journal header.
type JournalType string

const (
	TypeDepreciation JournalType = "DEPRECIATION"
	TypeAmortization JournalType = "AMORTIZATION"
	TypeDisposal     JournalType = "DISPOSAL"
	TypeDebtPayment  JournalType = "DEBT_PAYMENT"
	TypeGeneral      JournalType = "GENERAL"
)

// Journal is a dated, typed header owning exactly-balancing entry lines.
type Journal struct {
	ID           int64       `json:"id"`
	Number       string      `json:"number"`
	Date         time.Time   `json:"date"`
	Type         JournalType `json:"type"`
	Description  string      `json:"description"`
	SourceModule string      `json:"source_module"`
	SourceID     uuid.UUID   `json:"source_id"`
	CreatedAt    time.Time   `json:"created_at"`
	Entries      []Entry     `json:"entries,omitempty"`
}

// Entry is one journal line. Every line carries both the transaction-currency
// amount and the primary-currency amount together with the rate used, so a
// journal balances in both currencies by construction.
type Entry struct {
	ID            int64   `json:"id"`
	JournalID     int64   `json:"journal_id"`
	AccountID     int64   `json:"account_id"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	CurrencyID    int64   `json:"currency_id"`
	ExchangeRate  float64 `json:"exchange_rate"`
	PrimaryDebit  float64 `json:"primary_debit"`
	PrimaryCredit float64 `json:"primary_credit"`
}

// PostingInput groups the fields required to post a balanced two-line journal.
type PostingInput struct {
	Date            time.Time
	Type            JournalType
	Description     string
	SourceModule    string
	SourceID        uuid.UUID
	DebitAccountID  int64
	CreditAccountID int64
	Amount          float64
	CurrencyID      int64
	ExchangeRate    float64
}

// Domain errors. All wrap shared sentinels so the HTTP layer maps them
// without package-specific knowledge.
var (
	ErrAccountNotConfigured = fmt.Errorf("%w: posting account not configured", shared.ErrUnprocessable)
	ErrSameAccount          = fmt.Errorf("%w: debit and credit account must differ", shared.ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
)

// Validate checks the posting input before any write occurs.
func (in PostingInput) Validate() error {
	if in.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if in.DebitAccountID == 0 || in.CreditAccountID == 0 {
		return ErrAccountNotConfigured
	}
	if in.DebitAccountID == in.CreditAccountID {
		return ErrSameAccount
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: journal date required", shared.ErrValidation)
	}
	if in.ExchangeRate <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive", shared.ErrValidation)
	}
	return nil
}
