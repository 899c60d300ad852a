package billing

import (
	"time"

	"github.com/saralbooks/saralbooks/internal/gst"
	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/sequence"
)

// Status tracks the document lifecycle. Financial fields are never mutated in
// place; corrections go through reversal and re-posting.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusConverted Status = "CONVERTED"
)

// AccountRef names a ledger account together with its classification.
type AccountRef struct {
	Name string             `json:"name"`
	Type ledger.AccountType `json:"type"`
}

// JournalLine is one caller-supplied leg of a journal voucher.
type JournalLine struct {
	Account   AccountRef `json:"account"`
	Debit     float64    `json:"debit"`
	Credit    float64    `json:"credit"`
	Narration string     `json:"narration"`
}

// Payload holds the type-specific body of a document. Bills use Lines and
// Charges; payment and receipt vouchers use Amount plus the two accounts;
// journal vouchers use JournalLines.
type Payload struct {
	Lines         []gst.LineItem    `json:"lines,omitempty"`
	Charges       []gst.OtherCharge `json:"charges,omitempty"`
	BillType      gst.BillType      `json:"bill_type,omitempty"`
	GSTEnabled    bool              `json:"gst_enabled,omitempty"`
	ReverseCharge bool              `json:"reverse_charge,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	FromAccount   AccountRef        `json:"from_account,omitempty"`
	ToAccount     AccountRef        `json:"to_account,omitempty"`
	JournalLines  []JournalLine     `json:"journal_lines,omitempty"`
}

// Document is a firm-scoped bill or voucher with its allocated number and
// computed totals.
type Document struct {
	ID         int64                 `json:"id"`
	FirmID     int64                 `json:"firm_id"`
	DocType    sequence.DocumentType `json:"doc_type"`
	Number     string                `json:"number"`
	DocDate    time.Time             `json:"doc_date"`
	PartyName  string                `json:"party_name,omitempty"`
	Narration  string                `json:"narration,omitempty"`
	Status     Status                `json:"status"`
	Payload    Payload               `json:"payload"`
	Taxable    float64               `json:"taxable"`
	Charges    float64               `json:"charges"`
	CGST       float64               `json:"cgst"`
	SGST       float64               `json:"sgst"`
	IGST       float64               `json:"igst"`
	RoundOff   float64               `json:"round_off"`
	GrandTotal float64               `json:"grand_total"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// IsBill reports whether the type carries line items rather than voucher legs.
func IsBill(t sequence.DocumentType) bool {
	return !t.IsVoucher()
}

// applyBreakdown copies computed totals onto the document.
func (d *Document) applyBreakdown(b gst.Breakdown) {
	d.Taxable = b.TaxableValue
	d.Charges = b.ChargesTotal
	d.CGST = b.CGST
	d.SGST = b.SGST
	d.IGST = b.IGST
	d.RoundOff = b.RoundOff
	d.GrandTotal = b.GrandTotal
}
