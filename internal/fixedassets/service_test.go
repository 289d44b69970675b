package fixedassets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mdshared "github.com/meridian-erp/meridian-erp/internal/masterdata/shared"
)

func validCreateInput() CreateAssetInput {
	return CreateAssetInput{
		Code:           "fa-002",
		Name:           "Forklift",
		CategoryID:     7,
		BranchID:       2,
		CurrencyID:     1,
		Classification: ClassDepreciable,
		CostBasis:      48_000_000,
		AcquiredAt:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateNormalizesCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.Equal(t, "FA-002", a.Code)
	require.Equal(t, a.CostBasis, a.NetBookValue)
	require.Zero(t, a.AccumulatedDepreciation)
}

func TestCreateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateAssetInput)
	}{
		{"empty code", func(in *CreateAssetInput) { in.Code = "  " }},
		{"empty name", func(in *CreateAssetInput) { in.Name = "" }},
		{"zero cost", func(in *CreateAssetInput) { in.CostBasis = 0 }},
		{"missing branch", func(in *CreateAssetInput) { in.BranchID = 0 }},
		{"unknown classification", func(in *CreateAssetInput) { in.Classification = "LEASED" }},
	}
	svc := NewService(newMemoryRepo())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, mdshared.ErrValidation)
		})
	}
}

func TestCreateScheduleRejectsPlanExceedingBookValue(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = svc.CreateSchedule(context.Background(), a.ID, []ScheduleEntryInput{
		{DueDate: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), Amount: 30_000_000},
		{DueDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), Amount: 30_000_000},
	})
	require.ErrorIs(t, err, mdshared.ErrValidation)

	entries, err := repo.ListSchedule(context.Background(), a.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCreateScheduleStoresEntriesInDateOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = svc.CreateSchedule(context.Background(), a.ID, []ScheduleEntryInput{
		{DueDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), Amount: 4_000_000},
		{DueDate: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), Amount: 4_000_000},
	})
	require.NoError(t, err)

	entries, err := svc.Schedule(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].DueDate.Before(entries[1].DueDate))
}

func TestCreateScheduleRejectsDisposedAsset(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.NoError(t, svc.Dispose(context.Background(), DisposeInput{AssetID: a.ID, Reason: "written off"}))

	err = svc.CreateSchedule(context.Background(), a.ID, []ScheduleEntryInput{
		{DueDate: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), Amount: 1_000_000},
	})
	require.ErrorIs(t, err, ErrAssetDisposed)
}

func TestTransferRecordsMovement(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	rec, err := svc.Transfer(context.Background(), TransferInput{
		AssetID:    a.ID,
		ToBranchID: 9,
		Note:       "moved to warehouse",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), rec.FromBranchID)
	require.Equal(t, int64(9), rec.ToBranchID)

	got, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(9), got.BranchID)

	history, err := svc.Transfers(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestTransferToSameBranchFails(t *testing.T) {
	svc := NewService(newMemoryRepo())
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), TransferInput{AssetID: a.ID, ToBranchID: a.BranchID})
	require.ErrorIs(t, err, mdshared.ErrValidation)
}

func TestMaintenanceLogIsAppendOnly(t *testing.T) {
	svc := NewService(newMemoryRepo())
	a, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.AddMaintenance(context.Background(), MaintenanceInput{
		AssetID:     a.ID,
		Cost:        150_000,
		Description: "hydraulic fluid change",
	})
	require.NoError(t, err)

	_, err = svc.AddMaintenance(context.Background(), MaintenanceInput{AssetID: a.ID, Description: " "})
	require.ErrorIs(t, err, mdshared.ErrValidation)

	log, err := svc.Maintenance(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
}
