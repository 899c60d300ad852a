package sequence

import (
	"context"
	"time"
)

// Service allocates document numbers per (firm, financial year, type) scope.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the allocator.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// resolveScope defaults the financial year to the current one and validates
// the scope parameters.
func (s *Service) resolveScope(firmID int64, docType DocumentType, fy string) (string, error) {
	if !docType.Valid() {
		return "", ErrUnknownDocumentType
	}
	if firmID <= 0 {
		return "", ErrInvalidFirm
	}
	if fy == "" {
		fy = FinancialYear(s.now())
	}
	if err := ValidateFinancialYear(fy); err != nil {
		return "", err
	}
	return fy, nil
}

// Allocate issues the next document number for the scope. The counter
// increment and the cap check run in one transaction, so an exhausted scope
// rolls back without consuming a sequence value.
func (s *Service) Allocate(ctx context.Context, firmID int64, docType DocumentType, fy string) (string, error) {
	fy, err := s.resolveScope(firmID, docType, fy)
	if err != nil {
		return "", err
	}
	var seq int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		next, err := tx.IncrementSequence(ctx, firmID, fy, docType)
		if err != nil {
			return err
		}
		if docType.IsVoucher() && next > voucherSeqCap {
			return ErrSequenceExhausted
		}
		seq = next
		return nil
	})
	if err != nil {
		return "", err
	}
	return FormatNumber(docType, firmID, seq, fy), nil
}

// Preview returns the number the next Allocate would issue without writing.
// It may race with a concurrent Allocate and is best-effort only.
func (s *Service) Preview(ctx context.Context, firmID int64, docType DocumentType, fy string) (string, error) {
	fy, err := s.resolveScope(firmID, docType, fy)
	if err != nil {
		return "", err
	}
	last, err := s.repo.LastSequence(ctx, firmID, fy, docType)
	if err != nil {
		return "", err
	}
	next := last + 1
	if docType.IsVoucher() && next > voucherSeqCap {
		return "", ErrSequenceExhausted
	}
	return FormatNumber(docType, firmID, next, fy), nil
}
