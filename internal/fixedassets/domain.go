package fixedassets

import (
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Classification drives which account pair a schedule entry posts against.
type Classification string

const (
	ClassDepreciable Classification = "DEPRECIABLE"
	ClassAmortizable Classification = "AMORTIZABLE"
	ClassNone        Classification = "NONE"
)

// Asset model. AccumulatedDepreciation and NetBookValue are summary fields
// maintained exclusively by the batch processor through the quiet update
// path; the public update API never touches them.
type Asset struct {
	ID             int64          `json:"id"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	CategoryID     int64          `json:"category_id"`
	BranchID       int64          `json:"branch_id"`
	CurrencyID     int64          `json:"currency_id"`
	Classification Classification `json:"classification"`

	CostBasis               float64 `json:"cost_basis"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	NetBookValue            float64 `json:"net_book_value"`

	AcquiredAt     time.Time  `json:"acquired_at"`
	DisposedAt     *time.Time `json:"disposed_at,omitempty"`
	DisposalReason string     `json:"disposal_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Disposed reports whether the asset left service.
func (a Asset) Disposed() bool {
	return a.DisposedAt != nil
}

// ScheduleEntry is one due depreciation or amortization posting for an
// asset. Once processed the amount and journal reference never change.
type ScheduleEntry struct {
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
	DueDate     time.Time  `json:"due_date"`
	Amount      float64    `json:"amount"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	JournalID   *int64     `json:"journal_id,omitempty"`
}

// TransferRecord documents a branch reassignment.
type TransferRecord struct {
	ID           int64     `json:"id"`
	AssetID      int64     `json:"asset_id"`
	FromBranchID int64     `json:"from_branch_id"`
	ToBranchID   int64     `json:"to_branch_id"`
	TransferredAt time.Time `json:"transferred_at"`
	Note         string    `json:"note,omitempty"`
}

// MaintenanceRecord is an append-only service log line for an asset.
type MaintenanceRecord struct {
	ID          int64     `json:"id"`
	AssetID     int64     `json:"asset_id"`
	PerformedAt time.Time `json:"performed_at"`
	Cost        float64   `json:"cost"`
	Description string    `json:"description"`
}

// --- Input DTOs ---

// CreateAssetInput for registering an asset.
type CreateAssetInput struct {
	Code           string
	Name           string
	CategoryID     int64
	BranchID       int64
	CurrencyID     int64
	Classification Classification
	CostBasis      float64
	AcquiredAt     time.Time
}

// ScheduleEntryInput is one planned posting supplied when a depreciation
// plan is established.
type ScheduleEntryInput struct {
	DueDate time.Time
	Amount  float64
}

// DisposeInput marks an asset as disposed.
type DisposeInput struct {
	AssetID    int64
	DisposedAt time.Time
	Reason     string
}

// TransferInput reassigns an asset to another branch.
type TransferInput struct {
	AssetID       int64
	ToBranchID    int64
	TransferredAt time.Time
	Note          string
}

// MaintenanceInput appends a maintenance record.
type MaintenanceInput struct {
	AssetID     int64
	PerformedAt time.Time
	Cost        float64
	Description string
}

// ListAssetsRequest filters asset listings.
type ListAssetsRequest struct {
	BranchID   int64
	CategoryID int64
	Disposed   *bool
	Limit      int
	Offset     int
}

// Domain errors.
var (
	ErrAssetNotFound  = fmt.Errorf("asset %w", shared.ErrNotFound)
	ErrAssetDisposed  = fmt.Errorf("%w: asset already disposed", shared.ErrUnprocessable)
	ErrNothingToDo    = fmt.Errorf("%w: no schedule entries selected", shared.ErrValidation)
	// ErrAccountsNotConfigured is the configuration failure that aborts a
	// whole depreciation batch. Wrap it with the offending category code.
	ErrAccountsNotConfigured = fmt.Errorf("%w: category accounts not configured", shared.ErrUnprocessable)
)
