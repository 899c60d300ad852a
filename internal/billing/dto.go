package billing

import (
	"fmt"
	"time"

	"github.com/saralbooks/saralbooks/internal/sequence"
)

// DocumentInput carries everything needed to create or update a document.
type DocumentInput struct {
	FirmID        int64
	DocType       sequence.DocumentType
	FinancialYear string
	DocDate       time.Time
	PartyName     string
	Narration     string
	ActorID       int64
	Payload       Payload
}

// Validate checks the structural requirements per document type. Balance and
// tax invariants are enforced downstream by the posting engine.
func (in DocumentInput) Validate() error {
	if in.FirmID <= 0 {
		return fmt.Errorf("%w: firm required", ErrInvalidDocument)
	}
	if !in.DocType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDocument, in.DocType)
	}
	if in.DocDate.IsZero() {
		return fmt.Errorf("%w: date required", ErrInvalidDocument)
	}
	switch in.DocType {
	case sequence.DocTypeSales, sequence.DocTypePurchase,
		sequence.DocTypeCreditNote, sequence.DocTypeDebitNote,
		sequence.DocTypeDeliveryNote:
		if in.PartyName == "" {
			return fmt.Errorf("%w: party required", ErrInvalidDocument)
		}
		if len(in.Payload.Lines) == 0 {
			return fmt.Errorf("%w: at least one line item required", ErrInvalidDocument)
		}
		for idx, line := range in.Payload.Lines {
			if line.Qty <= 0 || line.Rate < 0 {
				return fmt.Errorf("%w: line %d has invalid qty/rate", ErrInvalidDocument, idx)
			}
		}
	case sequence.DocTypePayment, sequence.DocTypeReceipt:
		if in.Payload.Amount <= 0 {
			return fmt.Errorf("%w: amount must be positive", ErrInvalidDocument)
		}
		if in.Payload.FromAccount.Name == "" || in.Payload.ToAccount.Name == "" {
			return fmt.Errorf("%w: both accounts required", ErrInvalidDocument)
		}
		if !in.Payload.FromAccount.Type.Valid() || !in.Payload.ToAccount.Type.Valid() {
			return fmt.Errorf("%w: unknown account type", ErrInvalidDocument)
		}
	case sequence.DocTypeJournal:
		if len(in.Payload.JournalLines) < 2 {
			return fmt.Errorf("%w: journal needs at least two lines", ErrInvalidDocument)
		}
		for idx, line := range in.Payload.JournalLines {
			if line.Account.Name == "" || !line.Account.Type.Valid() {
				return fmt.Errorf("%w: journal line %d account", ErrInvalidDocument, idx)
			}
		}
	}
	return nil
}
