package fixedassets

import (
	"context"
	"sort"
	"strings"
	"time"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

// Service covers asset registration and lifecycle outside the posting batch.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, req ListAssetsRequest) ([]Asset, error) {
	return s.repo.ListAssets(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	if id <= 0 {
		return Asset{}, mdshared.ErrInvalidID
	}
	return s.repo.GetAsset(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateAssetInput) (Asset, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Code == "":
		return Asset{}, mdshared.Invalid("asset code is required")
	case in.Name == "":
		return Asset{}, mdshared.Invalid("asset name is required")
	case in.CategoryID <= 0 || in.BranchID <= 0 || in.CurrencyID <= 0:
		return Asset{}, mdshared.Invalid("category, branch and currency are required")
	case in.CostBasis <= 0:
		return Asset{}, mdshared.Invalid("cost basis must be positive")
	case in.AcquiredAt.IsZero():
		return Asset{}, mdshared.Invalid("acquisition date is required")
	}
	switch in.Classification {
	case ClassDepreciable, ClassAmortizable, ClassNone:
	default:
		return Asset{}, mdshared.Invalid("unknown classification")
	}
	return s.repo.CreateAsset(ctx, in)
}

// CreateSchedule establishes the depreciation plan for an asset in one
// transaction. The plan must not exceed the remaining book value.
func (s *Service) CreateSchedule(ctx context.Context, assetID int64, entries []ScheduleEntryInput) error {
	if len(entries) == 0 {
		return mdshared.Invalid("schedule requires at least one entry")
	}
	var sum float64
	for _, e := range entries {
		if e.Amount <= 0 {
			return mdshared.Invalid("schedule amounts must be positive")
		}
		if e.DueDate.IsZero() {
			return mdshared.Invalid("schedule entries require a due date")
		}
		sum += e.Amount
	}

	sorted := make([]ScheduleEntryInput, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DueDate.Before(sorted[j].DueDate) })

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ac, err := tx.GetAssetContextForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if ac.Asset.Disposed() {
			return ErrAssetDisposed
		}
		if sum > ac.Asset.NetBookValue+amountTolerance {
			return mdshared.Invalid("schedule total exceeds remaining book value")
		}
		return tx.InsertScheduleEntries(ctx, assetID, sorted)
	})
}

const amountTolerance = 1e-5

func (s *Service) Schedule(ctx context.Context, assetID int64) ([]ScheduleEntry, error) {
	if _, err := s.repo.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return s.repo.ListSchedule(ctx, assetID)
}

// Dispose takes the asset out of service. From that point the batch
// processor skips its remaining schedule entries.
func (s *Service) Dispose(ctx context.Context, in DisposeInput) error {
	if in.DisposedAt.IsZero() {
		in.DisposedAt = time.Now()
	}
	if _, err := s.repo.GetAsset(ctx, in.AssetID); err != nil {
		return err
	}
	return s.repo.DisposeAsset(ctx, in)
}

// Transfer reassigns the asset to another branch and records the movement.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferRecord, error) {
	if in.ToBranchID <= 0 {
		return TransferRecord{}, mdshared.Invalid("destination branch is required")
	}
	if in.TransferredAt.IsZero() {
		in.TransferredAt = time.Now()
	}

	var rec TransferRecord
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ac, err := tx.GetAssetContextForUpdate(ctx, in.AssetID)
		if err != nil {
			return err
		}
		if ac.Asset.Disposed() {
			return ErrAssetDisposed
		}
		if ac.Asset.BranchID == in.ToBranchID {
			return mdshared.Invalid("asset already belongs to that branch")
		}
		if err := tx.UpdateAssetBranch(ctx, in.AssetID, in.ToBranchID); err != nil {
			return err
		}
		rec = TransferRecord{
			AssetID:       in.AssetID,
			FromBranchID:  ac.Asset.BranchID,
			ToBranchID:    in.ToBranchID,
			TransferredAt: in.TransferredAt,
			Note:          in.Note,
		}
		rec.ID, err = tx.InsertTransfer(ctx, rec)
		return err
	})
	if err != nil {
		return TransferRecord{}, err
	}
	return rec, nil
}

func (s *Service) AddMaintenance(ctx context.Context, in MaintenanceInput) (MaintenanceRecord, error) {
	if in.Cost < 0 {
		return MaintenanceRecord{}, mdshared.Invalid("maintenance cost cannot be negative")
	}
	if strings.TrimSpace(in.Description) == "" {
		return MaintenanceRecord{}, mdshared.Invalid("maintenance description is required")
	}
	if in.PerformedAt.IsZero() {
		in.PerformedAt = time.Now()
	}
	if _, err := s.repo.GetAsset(ctx, in.AssetID); err != nil {
		return MaintenanceRecord{}, err
	}
	return s.repo.InsertMaintenance(ctx, in)
}

func (s *Service) Maintenance(ctx context.Context, assetID int64) ([]MaintenanceRecord, error) {
	return s.repo.ListMaintenance(ctx, assetID)
}

func (s *Service) Transfers(ctx context.Context, assetID int64) ([]TransferRecord, error) {
	return s.repo.ListTransfers(ctx, assetID)
}
