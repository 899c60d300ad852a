package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans posting groups for balance violations.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportWarmup precomputes a firm's report cache after posting bursts.
	TaskReportWarmup = "reports:warmup"
)

// LedgerIntegrityPayload selects the scan scope. A zero FirmID scans all firms.
type LedgerIntegrityPayload struct {
	FirmID int64 `json:"firm_id"`
}

// ReportWarmupPayload names the firm whose reports should be precomputed.
type ReportWarmupPayload struct {
	FirmID int64 `json:"firm_id"`
}

// NewLedgerIntegrityTask constructs an integrity scan task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewReportWarmupTask constructs a report warmup task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
