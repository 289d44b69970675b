package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDepreciationRun posts all depreciation schedule entries due as of
	// the payload date.
	TaskDepreciationRun = "depreciation:run"
	// TaskDebtPaymentPosted is emitted after a debt payment allocation
	// commits. Consumers react to the settlement without touching the
	// allocation transaction.
	TaskDebtPaymentPosted = "debts:payment_posted"
)

// DepreciationRunPayload selects the cutoff for a batch run. A zero AsOf
// means "now" when the task executes.
type DepreciationRunPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewDepreciationRunTask constructs the nightly batch task.
func NewDepreciationRunTask(payload DepreciationRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDepreciationRun, data, asynq.MaxRetry(3)), nil
}

// DebtPaymentPostedPayload carries the committed payment facts.
type DebtPaymentPostedPayload struct {
	PaymentID     int64     `json:"payment_id"`
	PartnerID     int64     `json:"partner_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	PrimaryAmount float64   `json:"primary_amount"`
	CurrencyID    int64     `json:"currency_id"`
	PaymentDate   time.Time `json:"payment_date"`
}

// NewDebtPaymentPostedTask constructs the payment-created event task.
func NewDebtPaymentPostedTask(payload DebtPaymentPostedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDebtPaymentPosted, data, asynq.MaxRetry(5)), nil
}
