package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/fixedassets"
)

// HandleDepreciationRun runs the batch processor for entries due as of the
// payload date.
func HandleDepreciationRun(processor *fixedassets.Processor, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DepreciationRunPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		asOf := payload.AsOf
		if asOf.IsZero() {
			asOf = time.Now()
		}
		result, err := processor.ProcessDue(ctx, asOf)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled depreciation run failed", slog.Any("error", err))
			return err
		}
		logger.InfoContext(ctx, "scheduled depreciation run done",
			slog.Time("as_of", asOf),
			slog.Int("processed", result.Processed),
			slog.Int("skipped", result.Skipped),
		)
		return nil
	}
}

// HandleDebtPaymentPosted consumes the payment-created event. For now the
// consumer records the settlement in the log; downstream reactions hang off
// this handler.
func HandleDebtPaymentPosted(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DebtPaymentPostedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.InfoContext(ctx, "debt payment posted",
			slog.Int64("payment_id", payload.PaymentID),
			slog.Int64("partner_id", payload.PartnerID),
			slog.String("type", payload.Type),
			slog.Float64("amount", payload.Amount),
		)
		return nil
	}
}
