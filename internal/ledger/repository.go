package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger entries.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error)
	ListByAccount(ctx context.Context, firmID int64, accountName string, from, to *time.Time) ([]Entry, error)
}

// TxRepository exposes entry operations within a transaction.
type TxRepository interface {
	InsertEntries(ctx context.Context, entries []Entry) ([]int64, error)
	GetByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error)
	GetEntry(ctx context.Context, firmID, entryID int64) (Entry, error)
	DeleteEntry(ctx context.Context, firmID, entryID int64) error
	DeleteByRef(ctx context.Context, firmID int64, refType RefType, refID int64) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStoreUnavailable, err)
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStoreUnavailable, err)
	}
	return nil
}

const entryColumns = `id, firm_id, group_id, reverses_group, entry_date, account_name, account_type, debit, credit, narration, ref_type, ref_id, created_at`

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.FirmID, &e.GroupID, &e.ReversesGroup, &e.EntryDate, &e.AccountName,
			&e.AccountType, &e.Debit, &e.Credit, &e.Narration, &e.RefType, &e.RefID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) ListByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries
WHERE firm_id=$1 AND ref_type=$2 AND ref_id=$3 ORDER BY id ASC`, firmID, refType, refID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *repository) ListByAccount(ctx context.Context, firmID int64, accountName string, from, to *time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries
WHERE firm_id=$1 AND account_name=$2
  AND ($3::date IS NULL OR entry_date >= $3)
  AND ($4::date IS NULL OR entry_date <= $4)
ORDER BY entry_date ASC, id ASC`, firmID, accountName, from, to)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

type txRepository struct {
	tx pgx.Tx
}

// NewTxRepository wraps an externally owned transaction so other modules can
// write entries atomically with their own rows.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

func (r *txRepository) InsertEntries(ctx context.Context, entries []Entry) ([]int64, error) {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		var id int64
		err := r.tx.QueryRow(ctx, `INSERT INTO ledger_entries
(firm_id, group_id, reverses_group, entry_date, account_name, account_type, debit, credit, narration, ref_type, ref_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
			e.FirmID, e.GroupID, e.ReversesGroup, e.EntryDate, e.AccountName, e.AccountType,
			toNumeric(e.Debit), toNumeric(e.Credit), e.Narration, e.RefType, e.RefID).Scan(&id)
		if err != nil {
			return nil, mapInsertError(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *txRepository) GetByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+entryColumns+` FROM ledger_entries
WHERE firm_id=$1 AND ref_type=$2 AND ref_id=$3 ORDER BY id ASC`, firmID, refType, refID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *txRepository) GetEntry(ctx context.Context, firmID, entryID int64) (Entry, error) {
	var e Entry
	err := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries
WHERE firm_id=$1 AND id=$2`, firmID, entryID).
		Scan(&e.ID, &e.FirmID, &e.GroupID, &e.ReversesGroup, &e.EntryDate, &e.AccountName,
			&e.AccountType, &e.Debit, &e.Credit, &e.Narration, &e.RefType, &e.RefID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, firmID, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE firm_id=$1 AND id=$2`, firmID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) DeleteByRef(ctx context.Context, firmID int64, refType RefType, refID int64) (int64, error) {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE firm_id=$1 AND ref_type=$2 AND ref_id=$3`, firmID, refType, refID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// mapInsertError translates check-constraint violations on entry rows into
// the domain sentinel.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "chk_entry_single_side" {
		return ErrInvalidEntry
	}
	return err
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
