package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityViolation is one posting group whose legs do not balance.
type IntegrityViolation struct {
	FirmID  int64
	GroupID string
	Debit   float64
	Credit  float64
}

// IntegrityChecker verifies the balance invariant across stored posting
// groups. Posting enforces it on the way in, so a hit here means data was
// modified outside the engine and needs operator attention.
type IntegrityChecker struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewIntegrityChecker constructs the checker.
func NewIntegrityChecker(pool *pgxpool.Pool, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{pool: pool, logger: logger}
}

// Scan returns every unbalanced posting group in scope. firmID zero scans
// all firms.
func (c *IntegrityChecker) Scan(ctx context.Context, firmID int64) ([]IntegrityViolation, error) {
	rows, err := c.pool.Query(ctx, `SELECT firm_id, group_id::text, SUM(debit), SUM(credit)
FROM ledger_entries
WHERE ($1 = 0 OR firm_id = $1)
GROUP BY firm_id, group_id
HAVING ABS(SUM(debit) - SUM(credit)) > 0.01`, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var violations []IntegrityViolation
	for rows.Next() {
		var v IntegrityViolation
		if err := rows.Scan(&v.FirmID, &v.GroupID, &v.Debit, &v.Credit); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// HandleTask processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	violations, err := c.Scan(ctx, payload.FirmID)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		c.logger.Info("ledger integrity scan clean", slog.Int64("firm_id", payload.FirmID))
		return nil
	}
	for _, v := range violations {
		c.logger.Error("unbalanced posting group",
			slog.Int64("firm_id", v.FirmID),
			slog.String("group_id", v.GroupID),
			slog.Float64("debit", v.Debit),
			slog.Float64("credit", v.Credit))
	}
	return nil
}
