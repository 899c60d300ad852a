package reports

import "github.com/saralbooks/saralbooks/internal/ledger"

// TrialBalanceRow reports one account as a debit or a credit column value,
// never both.
type TrialBalanceRow struct {
	AccountName string             `json:"account_name"`
	AccountType ledger.AccountType `json:"account_type"`
	Debit       float64            `json:"debit"`
	Credit      float64            `json:"credit"`
}

// TrialBalance lists every account with activity in the window. When the
// books are consistent TotalDebit equals TotalCredit.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64           `json:"total_debit"`
	TotalCredit float64           `json:"total_credit"`
}

// BuildTrialBalance folds account totals into trial balance rows using the
// uniform balance convention.
func BuildTrialBalance(totals []AccountTotal) TrialBalance {
	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(totals))}
	for _, t := range totals {
		balance := BalanceOf(t.AccountName, t.TotalDebit, t.TotalCredit)
		row := TrialBalanceRow{AccountName: t.AccountName, AccountType: t.AccountType}
		if balance.Type == BalanceDr {
			row.Debit = balance.Amount
		} else {
			row.Credit = balance.Amount
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	return tb
}
