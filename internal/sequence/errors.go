package sequence

import "errors"

var (
	// ErrInvalidFirm indicates a non-positive firm scope.
	ErrInvalidFirm = errors.New("sequence: invalid firm")
	// ErrInvalidFinancialYear indicates a malformed YY-YY scope.
	ErrInvalidFinancialYear = errors.New("sequence: invalid financial year")
	// ErrSequenceExhausted indicates the scope reached its capacity.
	ErrSequenceExhausted = errors.New("sequence: scope capacity reached")
	// ErrUnknownDocumentType indicates an unrecognised document type.
	ErrUnknownDocumentType = errors.New("sequence: unknown document type")
)
