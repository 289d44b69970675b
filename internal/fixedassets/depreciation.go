package fixedassets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/masterdata/assetcategories"
)

// AccountSource resolves the posting accounts configured for an asset
// category within a company.
type AccountSource interface {
	Accounts(ctx context.Context, categoryID, companyID int64) (assetcategories.CategoryAccounts, error)
}

// RateResolver supplies the exchange rate into the primary currency.
type RateResolver interface {
	Rate(ctx context.Context, currencyID, companyID int64) (float64, error)
}

// BatchResult summarizes one depreciation run.
type BatchResult struct {
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	Total     float64 `json:"total"`
}

// Processor runs scheduled depreciation and amortization postings. A run is
// one transaction: every selected entry posts and is marked, or none are.
type Processor struct {
	repo     Repository
	accounts AccountSource
	rates    RateResolver
	log      *slog.Logger
}

func NewProcessor(repo Repository, accounts AccountSource, rates RateResolver, log *slog.Logger) *Processor {
	return &Processor{repo: repo, accounts: accounts, rates: rates, log: log}
}

// ProcessDue posts every unprocessed schedule entry due on or before asOf.
func (p *Processor) ProcessDue(ctx context.Context, asOf time.Time) (BatchResult, error) {
	return p.run(ctx, func(ctx context.Context, tx TxRepository) ([]ScheduleEntry, error) {
		return tx.SelectDueEntries(ctx, asOf)
	})
}

// ProcessSelected posts the given schedule entries regardless of due date.
// Unknown IDs are ignored; already-processed entries and entries on disposed
// assets are skipped, not failed.
func (p *Processor) ProcessSelected(ctx context.Context, ids []int64) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, ErrNothingToDo
	}
	return p.run(ctx, func(ctx context.Context, tx TxRepository) ([]ScheduleEntry, error) {
		return tx.SelectEntriesByIDs(ctx, ids)
	})
}

type entrySelector func(ctx context.Context, tx TxRepository) ([]ScheduleEntry, error)

func (p *Processor) run(ctx context.Context, selectEntries entrySelector) (BatchResult, error) {
	var result BatchResult
	start := time.Now()

	err := p.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entries, err := selectEntries(ctx, tx)
		if err != nil {
			return err
		}

		// Asset context is loaded once per asset within the run; entries
		// for the same asset then accumulate onto the cached totals so the
		// final quiet write reflects the whole batch.
		assets := map[int64]*AssetContext{}
		pairs := map[int64]accountPair{}
		types := map[int64]ledger.JournalType{}
		rates := map[int64]float64{}

		now := time.Now()
		for _, entry := range entries {
			if entry.Processed {
				result.Skipped++
				continue
			}

			ac, ok := assets[entry.AssetID]
			if !ok {
				loaded, err := tx.GetAssetContextForUpdate(ctx, entry.AssetID)
				if err != nil {
					return err
				}
				ac = &loaded
				assets[entry.AssetID] = ac
			}
			if ac.Asset.Disposed() {
				result.Skipped++
				continue
			}

			// Accounts and rate are only resolved for assets that will
			// actually post, so a disposed asset with a broken category
			// cannot fail the batch.
			if _, ok := pairs[entry.AssetID]; !ok {
				accounts, err := p.accounts.Accounts(ctx, ac.Asset.CategoryID, ac.CompanyID)
				if err != nil {
					return fmt.Errorf("resolve accounts for category %s: %w", ac.CategoryCode, err)
				}
				pair, jType, err := resolvePostingAccounts(ac.Asset.Classification, ac.CategoryCode, accounts)
				if err != nil {
					return err
				}
				pairs[entry.AssetID] = pair
				types[entry.AssetID] = jType

				rate, err := p.rates.Rate(ctx, ac.Asset.CurrencyID, ac.CompanyID)
				if err != nil {
					return fmt.Errorf("resolve rate for asset %s: %w", ac.Asset.Code, err)
				}
				rates[entry.AssetID] = rate
			}

			pair := pairs[entry.AssetID]
			journal, err := ledger.Build(ledger.PostingInput{
				Date:            entry.DueDate,
				Type:            types[entry.AssetID],
				Description:     depreciationDescription(ac.Asset, entry.DueDate),
				SourceModule:    "fixedassets",
				SourceID:        uuid.New(),
				DebitAccountID:  pair.debit,
				CreditAccountID: pair.credit,
				Amount:          entry.Amount,
				CurrencyID:      ac.Asset.CurrencyID,
				ExchangeRate:    rates[entry.AssetID],
			})
			if err != nil {
				return fmt.Errorf("build journal for schedule entry %d: %w", entry.ID, err)
			}

			journal, err = tx.InsertJournal(ctx, journal)
			if err != nil {
				return err
			}
			if err := tx.MarkEntryProcessed(ctx, entry.ID, journal.ID, now); err != nil {
				return err
			}

			ac.Asset.AccumulatedDepreciation += entry.Amount
			ac.Asset.NetBookValue = ac.Asset.CostBasis - ac.Asset.AccumulatedDepreciation
			if ac.Asset.NetBookValue < 0 {
				ac.Asset.NetBookValue = 0
			}
			result.Processed++
			result.Total += entry.Amount
		}

		for id, ac := range assets {
			if ac.Asset.Disposed() {
				continue
			}
			if err := tx.SetDepreciationTotals(ctx, id, ac.Asset.AccumulatedDepreciation, ac.Asset.NetBookValue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	p.log.InfoContext(ctx, "depreciation batch finished",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Float64("total", result.Total),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func depreciationDescription(a Asset, due time.Time) string {
	return fmt.Sprintf("Depreciation %s %s %s", a.Code, a.Name, due.Format("2006-01"))
}
