package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/sequence"
)

// Repository persists documents. All writes go through WithTx so a document
// row and its ledger entries commit or roll back together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, firmID, id int64) (Document, error)
	List(ctx context.Context, firmID int64, docType sequence.DocumentType, limit, offset int) ([]Document, error)
}

// TxRepository exposes document writes within a transaction. Ledger hands the
// same transaction to the posting engine.
type TxRepository interface {
	Insert(ctx context.Context, doc Document) (int64, error)
	Update(ctx context.Context, doc Document) error
	UpdateStatus(ctx context.Context, firmID, id int64, status Status) error
	Delete(ctx context.Context, firmID, id int64) error
	Ledger() ledger.TxRepository
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const documentColumns = `id, firm_id, doc_type, number, doc_date, party_name, narration, status, payload,
taxable, charges, cgst, sgst, igst, round_off, grand_total, created_at, updated_at`

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("billing: begin tx: %w", err)
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("billing: commit tx: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, firmID, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents
WHERE firm_id=$1 AND id=$2`, firmID, id)
	return scanDocument(row)
}

func (r *repository) List(ctx context.Context, firmID int64, docType sequence.DocumentType, limit, offset int) ([]Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents
WHERE firm_id=$1 AND ($2 = '' OR doc_type=$2)
ORDER BY doc_date DESC, id DESC LIMIT $3 OFFSET $4`, firmID, string(docType), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) Ledger() ledger.TxRepository {
	return ledger.NewTxRepository(r.tx)
}

func (r *txRepository) Insert(ctx context.Context, doc Document) (int64, error) {
	payload, err := json.Marshal(doc.Payload)
	if err != nil {
		return 0, fmt.Errorf("billing: encode payload: %w", err)
	}
	var id int64
	err = r.tx.QueryRow(ctx, `INSERT INTO documents
(firm_id, doc_type, number, doc_date, party_name, narration, status, payload,
 taxable, charges, cgst, sgst, igst, round_off, grand_total)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15) RETURNING id`,
		doc.FirmID, doc.DocType, doc.Number, doc.DocDate, doc.PartyName, doc.Narration, doc.Status, payload,
		toNumeric(doc.Taxable), toNumeric(doc.Charges), toNumeric(doc.CGST), toNumeric(doc.SGST),
		toNumeric(doc.IGST), toNumeric(doc.RoundOff), toNumeric(doc.GrandTotal)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *txRepository) Update(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc.Payload)
	if err != nil {
		return fmt.Errorf("billing: encode payload: %w", err)
	}
	cmd, err := r.tx.Exec(ctx, `UPDATE documents SET
doc_date=$3, party_name=$4, narration=$5, payload=$6,
taxable=$7, charges=$8, cgst=$9, sgst=$10, igst=$11, round_off=$12, grand_total=$13,
updated_at=now()
WHERE firm_id=$1 AND id=$2`,
		doc.FirmID, doc.ID, doc.DocDate, doc.PartyName, doc.Narration, payload,
		toNumeric(doc.Taxable), toNumeric(doc.Charges), toNumeric(doc.CGST), toNumeric(doc.SGST),
		toNumeric(doc.IGST), toNumeric(doc.RoundOff), toNumeric(doc.GrandTotal))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) UpdateStatus(ctx context.Context, firmID, id int64, status Status) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE documents SET status=$3, updated_at=now()
WHERE firm_id=$1 AND id=$2`, firmID, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *txRepository) Delete(ctx context.Context, firmID, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM documents WHERE firm_id=$1 AND id=$2`, firmID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var payload []byte
	err := row.Scan(&doc.ID, &doc.FirmID, &doc.DocType, &doc.Number, &doc.DocDate, &doc.PartyName,
		&doc.Narration, &doc.Status, &payload, &doc.Taxable, &doc.Charges, &doc.CGST, &doc.SGST,
		&doc.IGST, &doc.RoundOff, &doc.GrandTotal, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc.Payload); err != nil {
			return Document{}, fmt.Errorf("billing: decode payload: %w", err)
		}
	}
	return doc, nil
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
