package reports

import "github.com/saralbooks/saralbooks/internal/ledger"

// BalanceSheetSide is one side of the statement.
type BalanceSheetSide struct {
	Rows  []Balance `json:"rows"`
	Total float64   `json:"total"`
}

// BalanceSheet is the position as of a cutoff date. Difference surfaces any
// imbalance between the sides; a nonzero value signals a bookkeeping defect
// upstream and is reported, never reconciled away.
type BalanceSheet struct {
	Assets      BalanceSheetSide `json:"assets"`
	Liabilities BalanceSheetSide `json:"liabilities"`
	Difference  float64          `json:"difference"`
}

// BuildBalanceSheet sorts account totals onto the asset or liability side by
// type. Debtors, bank and cash sit with assets; creditors, duties, and
// capital with liabilities. Trading-type accounts are excluded; their net
// effect reaches the balance sheet through retained profit postings.
func BuildBalanceSheet(totals []AccountTotal) BalanceSheet {
	var bs BalanceSheet
	for _, t := range totals {
		balance := BalanceOf(t.AccountName, t.TotalDebit, t.TotalCredit)
		switch t.AccountType {
		case ledger.AccountAssets, ledger.AccountSundryDebtors,
			ledger.AccountBank, ledger.AccountCash:
			bs.Assets.Rows = append(bs.Assets.Rows, balance)
			bs.Assets.Total += balance.Balance
		case ledger.AccountLiabilities, ledger.AccountCapital,
			ledger.AccountSundryCreditors, ledger.AccountDutiesTaxes:
			bs.Liabilities.Rows = append(bs.Liabilities.Rows, balance)
			bs.Liabilities.Total -= balance.Balance
		case ledger.AccountSales, ledger.AccountPurchase,
			ledger.AccountIncome, ledger.AccountExpenses:
			// Trading accounts close into P&L, not the balance sheet.
		}
	}
	bs.Difference = bs.Assets.Total - bs.Liabilities.Total
	return bs
}
