package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/saralbooks/saralbooks/internal/gst"
	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/sequence"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// NumberAllocator issues document numbers.
type NumberAllocator interface {
	Allocate(ctx context.Context, firmID int64, docType sequence.DocumentType, fy string) (string, error)
}

// PostingEngine writes and neutralises ledger posting groups on a transaction
// this module owns, so the document row and its entries land together.
type PostingEngine interface {
	PostTx(ctx context.Context, tx ledger.TxRepository, input ledger.PostingInput) ([]int64, error)
	RepostTx(ctx context.Context, tx ledger.TxRepository, firmID int64, refType ledger.RefType, refID int64, input ledger.PostingInput) ([]int64, error)
	ReverseTx(ctx context.Context, tx ledger.TxRepository, firmID int64, refType ledger.RefType, refID int64) ([]int64, error)
	PurgeRefTx(ctx context.Context, tx ledger.TxRepository, firmID int64, refType ledger.RefType, refID int64) (int64, error)
}

// AuditPort records document events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Notifier hears about ledger-affecting document changes, e.g. to refresh
// the firm's report cache in the background.
type Notifier interface {
	DocumentPosted(ctx context.Context, firmID int64)
}

// Service orchestrates document lifecycle: number allocation, tax totals,
// and the ledger side effects.
type Service struct {
	docs     Repository
	seq      NumberAllocator
	ledger   PostingEngine
	audit    AuditPort
	notifier Notifier
	now      func() time.Time
}

// NewService constructs the document service.
func NewService(docs Repository, seq NumberAllocator, engine PostingEngine, audit AuditPort) *Service {
	return &Service{docs: docs, seq: seq, ledger: engine, audit: audit, now: time.Now}
}

// WithNotifier installs a change listener. Optional.
func (s *Service) WithNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) notify(ctx context.Context, firmID int64) {
	if s.notifier != nil {
		s.notifier.DocumentPosted(ctx, firmID)
	}
}

// Create allocates a number, computes totals, then stores the document and
// posts its ledger group in one transaction. Number allocation commits
// separately, so a failed posting leaves a numbering gap rather than a
// duplicate.
func (s *Service) Create(ctx context.Context, input DocumentInput) (Document, error) {
	if err := input.Validate(); err != nil {
		return Document{}, err
	}
	number, err := s.seq.Allocate(ctx, input.FirmID, input.DocType, input.FinancialYear)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		FirmID:    input.FirmID,
		DocType:   input.DocType,
		Number:    number,
		DocDate:   input.DocDate,
		PartyName: input.PartyName,
		Narration: input.Narration,
		Status:    StatusActive,
		Payload:   input.Payload,
	}
	doc.computeTotals()

	err = s.docs.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.Insert(ctx, doc)
		if err != nil {
			return err
		}
		doc.ID = id
		entries := EntriesFor(doc)
		if len(entries) == 0 {
			return nil
		}
		_, err = s.ledger.PostTx(ctx, tx.Ledger(), ledger.PostingInput{
			FirmID:  doc.FirmID,
			Date:    doc.DocDate,
			RefType: refTypeFor(doc.DocType),
			RefID:   doc.ID,
			ActorID: input.ActorID,
			Entries: entries,
		})
		return err
	})
	if err != nil {
		return Document{}, err
	}

	s.record(ctx, doc, input.ActorID, "document.create")
	s.notify(ctx, doc.FirmID)
	return doc, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, firmID, id int64) (Document, error) {
	return s.docs.Get(ctx, firmID, id)
}

// List returns documents for a firm, newest first, optionally filtered by type.
func (s *Service) List(ctx context.Context, firmID int64, docType sequence.DocumentType, limit, offset int) ([]Document, error) {
	return s.docs.List(ctx, firmID, docType, limit, offset)
}

// Update corrects an active document. The new totals and the ledger
// reverse-plus-repost commit in one transaction, so a failure leaves both the
// document and its entries untouched; the number and type never change.
func (s *Service) Update(ctx context.Context, firmID, id int64, input DocumentInput) (Document, error) {
	existing, err := s.docs.Get(ctx, firmID, id)
	if err != nil {
		return Document{}, err
	}
	if existing.Status != StatusActive {
		return Document{}, ErrDocumentNotActive
	}
	input.FirmID = firmID
	input.DocType = existing.DocType
	if err := input.Validate(); err != nil {
		return Document{}, err
	}

	doc := existing
	doc.DocDate = input.DocDate
	doc.PartyName = input.PartyName
	doc.Narration = input.Narration
	doc.Payload = input.Payload
	doc.computeTotals()

	err = s.docs.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Update(ctx, doc); err != nil {
			return err
		}
		entries := EntriesFor(doc)
		if len(entries) == 0 {
			return nil
		}
		_, err := s.ledger.RepostTx(ctx, tx.Ledger(), firmID, refTypeFor(doc.DocType), doc.ID, ledger.PostingInput{
			FirmID:  firmID,
			Date:    doc.DocDate,
			RefType: refTypeFor(doc.DocType),
			RefID:   doc.ID,
			ActorID: input.ActorID,
			Entries: entries,
		})
		return err
	})
	if err != nil {
		return Document{}, err
	}

	s.record(ctx, doc, input.ActorID, "document.update")
	s.notify(ctx, firmID)
	return doc, nil
}

// Cancel reverses the document's posting group and marks it CANCELLED. The
// row and its (neutralised) entries stay for the audit trail.
func (s *Service) Cancel(ctx context.Context, firmID, id, actorID int64) (Document, error) {
	doc, err := s.docs.Get(ctx, firmID, id)
	if err != nil {
		return Document{}, err
	}
	if doc.Status != StatusActive {
		return Document{}, ErrDocumentNotActive
	}
	err = s.docs.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.ledger.ReverseTx(ctx, tx.Ledger(), firmID, refTypeFor(doc.DocType), doc.ID); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, firmID, id, StatusCancelled)
	})
	if err != nil {
		return Document{}, err
	}
	doc.Status = StatusCancelled
	s.record(ctx, doc, actorID, "document.cancel")
	s.notify(ctx, firmID)
	return doc, nil
}

// Delete removes a document and all its ledger entries. Converted documents
// are dependencies of their successor and cannot be removed. The sequence
// number is never reused.
func (s *Service) Delete(ctx context.Context, firmID, id, actorID int64) error {
	doc, err := s.docs.Get(ctx, firmID, id)
	if err != nil {
		return err
	}
	if doc.Status == StatusConverted {
		return ErrDocumentConverted
	}
	err = s.docs.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := s.ledger.PurgeRefTx(ctx, tx.Ledger(), firmID, refTypeFor(doc.DocType), doc.ID); err != nil {
			return err
		}
		return tx.Delete(ctx, firmID, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, doc, actorID, "document.delete")
	s.notify(ctx, firmID)
	return nil
}

// Convert turns an active delivery note into a sales invoice. The invoice
// gets its own number and posting group; the note is marked CONVERTED.
func (s *Service) Convert(ctx context.Context, firmID, id, actorID int64) (Document, error) {
	note, err := s.docs.Get(ctx, firmID, id)
	if err != nil {
		return Document{}, err
	}
	if note.DocType != sequence.DocTypeDeliveryNote {
		return Document{}, ErrNotDeliveryNote
	}
	if note.Status != StatusActive {
		return Document{}, ErrDocumentNotActive
	}

	invoice, err := s.Create(ctx, DocumentInput{
		FirmID:    firmID,
		DocType:   sequence.DocTypeSales,
		DocDate:   s.now(),
		PartyName: note.PartyName,
		Narration: fmt.Sprintf("Against %s", note.Number),
		ActorID:   actorID,
		Payload:   note.Payload,
	})
	if err != nil {
		return Document{}, err
	}
	err = s.docs.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, firmID, id, StatusConverted)
	})
	if err != nil {
		return Document{}, err
	}
	s.record(ctx, note, actorID, "document.convert")
	return invoice, nil
}

// HSNSummary returns the compliance grouping for a bill's lines and charges.
func (s *Service) HSNSummary(ctx context.Context, firmID, id int64) ([]gst.HSNRow, error) {
	doc, err := s.docs.Get(ctx, firmID, id)
	if err != nil {
		return nil, err
	}
	meta := gst.BillMeta{
		BillType:      doc.Payload.BillType,
		GSTEnabled:    doc.Payload.GSTEnabled,
		ReverseCharge: doc.Payload.ReverseCharge,
	}
	return gst.SummariseHSN(doc.Payload.Lines, doc.Payload.Charges, meta), nil
}

// computeTotals fills the denormalised totals from the payload.
func (d *Document) computeTotals() {
	switch {
	case IsBill(d.DocType):
		b := gst.Compute(d.Payload.Lines, d.Payload.Charges, gst.BillMeta{
			BillType:      d.Payload.BillType,
			GSTEnabled:    d.Payload.GSTEnabled,
			ReverseCharge: d.Payload.ReverseCharge,
		})
		d.applyBreakdown(b)
	case d.DocType == sequence.DocTypeJournal:
		var total float64
		for _, line := range d.Payload.JournalLines {
			total += line.Debit
		}
		d.GrandTotal = total
	default:
		d.GrandTotal = d.Payload.Amount
	}
}

func refTypeFor(docType sequence.DocumentType) ledger.RefType {
	if docType.IsVoucher() {
		return ledger.RefVoucher
	}
	return ledger.RefBill
}

func (s *Service) record(ctx context.Context, doc Document, actorID int64, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		FirmID:   doc.FirmID,
		ActorID:  actorID,
		Action:   action,
		Entity:   string(doc.DocType),
		EntityID: doc.Number,
		Meta:     map[string]any{"id": doc.ID, "grand_total": doc.GrandTotal},
		At:       s.now(),
	})
}
