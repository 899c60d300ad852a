package billing

import (
	"math"
	"testing"

	"github.com/saralbooks/saralbooks/internal/gst"
	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/sequence"
)

func billDocument(docType sequence.DocumentType, reverseCharge bool) Document {
	doc := Document{
		FirmID:    1,
		DocType:   docType,
		Number:    "INVF1-0001/25-26",
		PartyName: "Acme Traders",
		Status:    StatusActive,
		Payload: Payload{
			Lines: []gst.LineItem{
				{Description: "Widget", HSNCode: "8471", Qty: 1, Rate: 1000, GSTRatePct: 18},
			},
			BillType:      gst.BillTypeIntraState,
			GSTEnabled:    true,
			ReverseCharge: reverseCharge,
		},
	}
	doc.computeTotals()
	return doc
}

func assertBalanced(t *testing.T, entries []ledger.EntryInput) {
	t.Helper()
	var debit, credit float64
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	if math.Abs(debit-credit) > 0.01 {
		t.Fatalf("unbalanced group: debit %.2f credit %.2f", debit, credit)
	}
}

func findLeg(t *testing.T, entries []ledger.EntryInput, account string) ledger.EntryInput {
	t.Helper()
	for _, e := range entries {
		if e.AccountName == account {
			return e
		}
	}
	t.Fatalf("no leg for account %q", account)
	return ledger.EntryInput{}
}

func TestSaleEntries(t *testing.T) {
	entries := EntriesFor(billDocument(sequence.DocTypeSales, false))
	assertBalanced(t, entries)

	party := findLeg(t, entries, "Acme Traders")
	if party.Debit != 1180 || party.AccountType != ledger.AccountSundryDebtors {
		t.Fatalf("party leg = %+v", party)
	}
	if got := findLeg(t, entries, accountSales); got.Credit != 1000 {
		t.Fatalf("sales credit = %.2f", got.Credit)
	}
	if got := findLeg(t, entries, accountCGSTOutput); got.Credit != 90 {
		t.Fatalf("cgst credit = %.2f", got.Credit)
	}
	if got := findLeg(t, entries, accountSGSTOutput); got.Credit != 90 {
		t.Fatalf("sgst credit = %.2f", got.Credit)
	}
	// Zero IGST and zero round-off legs are dropped.
	for _, e := range entries {
		if e.AccountName == accountIGSTOutput || e.AccountName == accountRoundOff {
			t.Fatalf("unexpected leg %q", e.AccountName)
		}
	}
}

func TestCreditNoteFlipsSaleLegs(t *testing.T) {
	entries := EntriesFor(billDocument(sequence.DocTypeCreditNote, false))
	assertBalanced(t, entries)
	if got := findLeg(t, entries, "Acme Traders"); got.Credit != 1180 {
		t.Fatalf("party leg = %+v", got)
	}
	if got := findLeg(t, entries, accountSales); got.Debit != 1000 {
		t.Fatalf("sales leg = %+v", got)
	}
}

func TestPurchaseEntries(t *testing.T) {
	entries := EntriesFor(billDocument(sequence.DocTypePurchase, false))
	assertBalanced(t, entries)
	party := findLeg(t, entries, "Acme Traders")
	if party.Credit != 1180 || party.AccountType != ledger.AccountSundryCreditors {
		t.Fatalf("party leg = %+v", party)
	}
	if got := findLeg(t, entries, accountPurchase); got.Debit != 1000 {
		t.Fatalf("purchase leg = %+v", got)
	}
	if got := findLeg(t, entries, accountCGSTInput); got.Debit != 90 {
		t.Fatalf("cgst input leg = %+v", got)
	}
}

func TestReverseChargeSkipsTaxLegs(t *testing.T) {
	doc := billDocument(sequence.DocTypeSales, true)
	if doc.GrandTotal != 1000 {
		t.Fatalf("grand total = %.2f", doc.GrandTotal)
	}
	entries := EntriesFor(doc)
	assertBalanced(t, entries)
	if len(entries) != 2 {
		t.Fatalf("expected party and sales legs only, got %d", len(entries))
	}
	if got := findLeg(t, entries, "Acme Traders"); got.Debit != 1000 {
		t.Fatalf("party leg = %+v", got)
	}
}

func TestRoundOffLegBalancesTheGroup(t *testing.T) {
	doc := Document{
		FirmID:    1,
		DocType:   sequence.DocTypeSales,
		Number:    "INVF1-0002/25-26",
		PartyName: "Acme Traders",
		Payload: Payload{
			Lines:      []gst.LineItem{{Qty: 1, Rate: 999.49, GSTRatePct: 0}},
			BillType:   gst.BillTypeIntraState,
			GSTEnabled: true,
		},
	}
	doc.computeTotals()
	entries := EntriesFor(doc)
	assertBalanced(t, entries)
	roundOff := findLeg(t, entries, accountRoundOff)
	if math.Abs(roundOff.Debit-0.49) > 0.001 {
		t.Fatalf("round off leg = %+v", roundOff)
	}
}

func TestPaymentAndReceiptEntries(t *testing.T) {
	doc := Document{
		FirmID:  1,
		DocType: sequence.DocTypePayment,
		Number:  "PVF1-0001/25-26",
		Payload: Payload{
			Amount:      5000,
			FromAccount: AccountRef{Name: "HDFC Bank", Type: ledger.AccountBank},
			ToAccount:   AccountRef{Name: "Acme Traders", Type: ledger.AccountSundryCreditors},
		},
	}
	doc.computeTotals()

	entries := EntriesFor(doc)
	assertBalanced(t, entries)
	if got := findLeg(t, entries, "HDFC Bank"); got.Credit != 5000 {
		t.Fatalf("payer leg = %+v", got)
	}
	if got := findLeg(t, entries, "Acme Traders"); got.Debit != 5000 {
		t.Fatalf("payee leg = %+v", got)
	}

	doc.DocType = sequence.DocTypeReceipt
	entries = EntriesFor(doc)
	if got := findLeg(t, entries, "HDFC Bank"); got.Debit != 5000 {
		t.Fatalf("receipt payer leg = %+v", got)
	}
}

func TestJournalEntriesPassThrough(t *testing.T) {
	doc := Document{
		FirmID:  1,
		DocType: sequence.DocTypeJournal,
		Number:  "JVF1-0001/25-26",
		Payload: Payload{
			JournalLines: []JournalLine{
				{Account: AccountRef{Name: "Rent", Type: ledger.AccountExpenses}, Debit: 20000},
				{Account: AccountRef{Name: "HDFC Bank", Type: ledger.AccountBank}, Credit: 20000},
			},
		},
	}
	entries := EntriesFor(doc)
	assertBalanced(t, entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(entries))
	}
	if entries[0].Narration != "JVF1-0001/25-26" {
		t.Fatalf("narration = %q", entries[0].Narration)
	}
}

func TestDeliveryNoteHasNoEntries(t *testing.T) {
	if entries := EntriesFor(billDocument(sequence.DocTypeDeliveryNote, false)); len(entries) != 0 {
		t.Fatalf("delivery note produced %d entries", len(entries))
	}
}
