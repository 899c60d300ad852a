package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DocumentType identifies a numbered business document.
type DocumentType string

const (
	DocTypeSales        DocumentType = "SALES"
	DocTypePurchase     DocumentType = "PURCHASE"
	DocTypeCreditNote   DocumentType = "CREDIT_NOTE"
	DocTypeDebitNote    DocumentType = "DEBIT_NOTE"
	DocTypeDeliveryNote DocumentType = "DELIVERY_NOTE"
	DocTypePayment      DocumentType = "PAYMENT"
	DocTypeReceipt      DocumentType = "RECEIPT"
	DocTypeJournal      DocumentType = "JOURNAL"
)

var prefixes = map[DocumentType]string{
	DocTypeSales:        "INV",
	DocTypePurchase:     "PUR",
	DocTypeCreditNote:   "CN",
	DocTypeDebitNote:    "DN",
	DocTypeDeliveryNote: "DLN",
	DocTypePayment:      "PV",
	DocTypeReceipt:      "RV",
	DocTypeJournal:      "JV",
}

// voucherSeqCap bounds voucher sequences per (firm, year, type) scope.
const voucherSeqCap = 9999

// Valid reports whether the document type is known.
func (t DocumentType) Valid() bool {
	_, ok := prefixes[t]
	return ok
}

// IsVoucher reports whether the type is a voucher rather than a bill.
func (t DocumentType) IsVoucher() bool {
	switch t {
	case DocTypePayment, DocTypeReceipt, DocTypeJournal:
		return true
	}
	return false
}

// Prefix returns the document number prefix for the type.
func (t DocumentType) Prefix() string {
	return prefixes[t]
}

// Counter is a sequence counter row scoped by firm, financial year and type.
type Counter struct {
	FirmID        int64
	FinancialYear string
	DocType       DocumentType
	LastSequence  int64
	UpdatedAt     time.Time
}

var fyPattern = regexp.MustCompile(`^\d{2}-\d{2}$`)

// FinancialYear returns the April–March financial year covering t, encoded YY-YY.
func FinancialYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%02d-%02d", year%100, (year+1)%100)
}

// ValidateFinancialYear checks the YY-YY encoding for two consecutive years.
func ValidateFinancialYear(fy string) error {
	if !fyPattern.MatchString(fy) {
		return ErrInvalidFinancialYear
	}
	first, _ := strconv.Atoi(fy[:2])
	second, _ := strconv.Atoi(fy[3:])
	if second != (first+1)%100 {
		return ErrInvalidFinancialYear
	}
	return nil
}

// FormatNumber renders a document number as {PREFIX}F{firmID}-{seq}/{FY}.
func FormatNumber(docType DocumentType, firmID, seq int64, fy string) string {
	return fmt.Sprintf("%sF%d-%04d/%s", docType.Prefix(), firmID, seq, fy)
}
