package billing

import (
	"math"

	"github.com/saralbooks/saralbooks/internal/ledger"
	"github.com/saralbooks/saralbooks/internal/sequence"
)

// Ledger account heads used by document posting. Accounts are virtual: a name
// plus a type is all the ledger needs.
const (
	accountSales      = "Sales"
	accountPurchase   = "Purchase"
	accountCGSTOutput = "CGST Output"
	accountSGSTOutput = "SGST Output"
	accountIGSTOutput = "IGST Output"
	accountCGSTInput  = "CGST Input"
	accountSGSTInput  = "SGST Input"
	accountIGSTInput  = "IGST Input"
	accountRoundOff   = "Round Off"
)

// roundOffEpsilon suppresses round-off legs below half a paisa.
const roundOffEpsilon = 0.005

// EntriesFor builds the balanced posting group for a document. Delivery notes
// carry no financial effect and yield no entries. Reverse-charge tax is
// disclosed on the document but never posted.
func EntriesFor(doc Document) []ledger.EntryInput {
	switch doc.DocType {
	case sequence.DocTypeSales:
		return saleEntries(doc, false)
	case sequence.DocTypeCreditNote:
		return saleEntries(doc, true)
	case sequence.DocTypePurchase:
		return purchaseEntries(doc, false)
	case sequence.DocTypeDebitNote:
		return purchaseEntries(doc, true)
	case sequence.DocTypePayment:
		return transferEntries(doc, false)
	case sequence.DocTypeReceipt:
		return transferEntries(doc, true)
	case sequence.DocTypeJournal:
		return journalEntries(doc)
	}
	return nil
}

// saleEntries debits the party for the payable total and credits Sales and
// the output tax heads. A credit note is the same posting with the legs
// flipped, returning goods to stock and money to the party.
func saleEntries(doc Document, flipped bool) []ledger.EntryInput {
	gross := doc.Taxable + doc.Charges
	entries := []ledger.EntryInput{
		leg(doc.PartyName, ledger.AccountSundryDebtors, doc.GrandTotal, flipped, doc.Number),
		leg(accountSales, ledger.AccountSales, -gross, flipped, doc.Number),
	}
	if !doc.Payload.ReverseCharge {
		entries = append(entries,
			leg(accountCGSTOutput, ledger.AccountDutiesTaxes, -doc.CGST, flipped, doc.Number),
			leg(accountSGSTOutput, ledger.AccountDutiesTaxes, -doc.SGST, flipped, doc.Number),
			leg(accountIGSTOutput, ledger.AccountDutiesTaxes, -doc.IGST, flipped, doc.Number),
		)
	}
	entries = append(entries, leg(accountRoundOff, ledger.AccountExpenses, -doc.RoundOff, flipped, doc.Number))
	return compact(entries)
}

// purchaseEntries is the mirror of a sale: Purchase and input tax are
// debited, the supplier is credited. A debit note flips the legs.
func purchaseEntries(doc Document, flipped bool) []ledger.EntryInput {
	gross := doc.Taxable + doc.Charges
	entries := []ledger.EntryInput{
		leg(doc.PartyName, ledger.AccountSundryCreditors, -doc.GrandTotal, flipped, doc.Number),
		leg(accountPurchase, ledger.AccountPurchase, gross, flipped, doc.Number),
	}
	if !doc.Payload.ReverseCharge {
		entries = append(entries,
			leg(accountCGSTInput, ledger.AccountDutiesTaxes, doc.CGST, flipped, doc.Number),
			leg(accountSGSTInput, ledger.AccountDutiesTaxes, doc.SGST, flipped, doc.Number),
			leg(accountIGSTInput, ledger.AccountDutiesTaxes, doc.IGST, flipped, doc.Number),
		)
	}
	entries = append(entries, leg(accountRoundOff, ledger.AccountExpenses, doc.RoundOff, flipped, doc.Number))
	return compact(entries)
}

// transferEntries posts a payment voucher: credit the paying account, debit
// the payee. A receipt is the mirror.
func transferEntries(doc Document, flipped bool) []ledger.EntryInput {
	from, to := doc.Payload.FromAccount, doc.Payload.ToAccount
	entries := []ledger.EntryInput{
		leg(to.Name, to.Type, doc.Payload.Amount, flipped, doc.Number),
		leg(from.Name, from.Type, -doc.Payload.Amount, flipped, doc.Number),
	}
	return compact(entries)
}

func journalEntries(doc Document) []ledger.EntryInput {
	entries := make([]ledger.EntryInput, 0, len(doc.Payload.JournalLines))
	for _, line := range doc.Payload.JournalLines {
		narration := line.Narration
		if narration == "" {
			narration = doc.Number
		}
		entries = append(entries, ledger.EntryInput{
			AccountName: line.Account.Name,
			AccountType: line.Account.Type,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Narration:   narration,
		})
	}
	return entries
}

// leg builds one entry: positive amounts debit the account, negative amounts
// credit it, and flipped swaps the side.
func leg(name string, accountType ledger.AccountType, amount float64, flipped bool, narration string) ledger.EntryInput {
	if flipped {
		amount = -amount
	}
	e := ledger.EntryInput{AccountName: name, AccountType: accountType, Narration: narration}
	if amount >= 0 {
		e.Debit = amount
	} else {
		e.Credit = -amount
	}
	return e
}

// compact drops zero-amount legs such as the unused tax split and a round-off
// below the epsilon.
func compact(entries []ledger.EntryInput) []ledger.EntryInput {
	out := entries[:0]
	for _, e := range entries {
		if math.Abs(e.Debit)+math.Abs(e.Credit) < roundOffEpsilon {
			continue
		}
		out = append(out, e)
	}
	return out
}
