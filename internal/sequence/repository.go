package sequence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saralbooks/saralbooks/internal/platform/db"
)

// Repository persists sequence counters.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LastSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error)
}

// TxRepository exposes counter operations within a transaction.
type TxRepository interface {
	IncrementSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// LastSequence reads the counter without locking. Zero means no allocation
// has happened in the scope yet.
func (r *repository) LastSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error) {
	var last int64
	err := r.pool.QueryRow(ctx, `SELECT last_sequence FROM document_sequences
WHERE firm_id=$1 AND financial_year=$2 AND doc_type=$3`, firmID, fy, docType).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return last, nil
}

type txRepository struct {
	tx pgx.Tx
}

// IncrementSequence bumps the counter for the scope, creating the row on
// first use. The upsert serialises concurrent allocations on the counter row.
func (r *txRepository) IncrementSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO document_sequences (firm_id, financial_year, doc_type, last_sequence)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (firm_id, financial_year, doc_type)
		DO UPDATE SET last_sequence = document_sequences.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, firmID, fy, docType).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
