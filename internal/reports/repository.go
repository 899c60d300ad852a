package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads aggregated ledger totals. All queries group at the store
// so report building stays in memory over small row sets.
type Repository interface {
	AccountTotals(ctx context.Context, firmID int64, accountName string, asOf *time.Time) (AccountTotal, error)
	ListTotals(ctx context.Context, firmID int64, from, to *time.Time) ([]AccountTotal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) AccountTotals(ctx context.Context, firmID int64, accountName string, asOf *time.Time) (AccountTotal, error) {
	total := AccountTotal{AccountName: accountName}
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(account_type), ''),
COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
FROM ledger_entries
WHERE firm_id=$1 AND account_name=$2
  AND ($3::date IS NULL OR entry_date <= $3)`,
		firmID, accountName, asOf).
		Scan(&total.AccountType, &total.TotalDebit, &total.TotalCredit)
	if err != nil {
		return AccountTotal{}, err
	}
	return total, nil
}

func (r *repository) ListTotals(ctx context.Context, firmID int64, from, to *time.Time) ([]AccountTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT account_name, account_type,
COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
FROM ledger_entries
WHERE firm_id=$1
  AND ($2::date IS NULL OR entry_date >= $2)
  AND ($3::date IS NULL OR entry_date <= $3)
GROUP BY account_name, account_type
ORDER BY account_name ASC`, firmID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var totals []AccountTotal
	for rows.Next() {
		var t AccountTotal
		if err := rows.Scan(&t.AccountName, &t.AccountType, &t.TotalDebit, &t.TotalCredit); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
