package billing

import "errors"

var (
	ErrDocumentNotFound  = errors.New("billing: document not found")
	ErrDocumentNotActive = errors.New("billing: document is not active")
	ErrDocumentConverted = errors.New("billing: document has been converted and cannot be removed")
	ErrNotDeliveryNote   = errors.New("billing: only delivery notes can be converted")
	ErrInvalidDocument   = errors.New("billing: invalid document")
)
