package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/saralbooks/saralbooks/internal/reports"
)

// ReportWarmer precomputes a firm's all-time reports so the first dashboard
// hit after a posting burst lands on a warm cache.
type ReportWarmer struct {
	service *reports.Service
	logger  *slog.Logger
}

// NewReportWarmer constructs the warmer.
func NewReportWarmer(service *reports.Service, logger *slog.Logger) *ReportWarmer {
	return &ReportWarmer{service: service, logger: logger}
}

// HandleTask processes TaskReportWarmup tasks.
func (w *ReportWarmer) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.FirmID <= 0 {
		return asynq.SkipRetry
	}
	if err := w.service.InvalidateFirm(ctx, payload.FirmID); err != nil {
		w.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
	if _, err := w.service.TrialBalance(ctx, payload.FirmID, nil, nil); err != nil {
		return err
	}
	if _, err := w.service.ProfitLoss(ctx, payload.FirmID, nil, nil); err != nil {
		return err
	}
	if _, err := w.service.BalanceSheet(ctx, payload.FirmID, nil); err != nil {
		return err
	}
	w.logger.Info("report cache warmed", slog.Int64("firm_id", payload.FirmID))
	return nil
}
