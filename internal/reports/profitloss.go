package reports

import "github.com/saralbooks/saralbooks/internal/ledger"

// ProfitLoss is the trading and P&L statement for a window. Sales and income
// are credit-natured, so their contribution is credit minus debit; purchases
// and expenses are the opposite.
type ProfitLoss struct {
	Sales       float64 `json:"sales"`
	Purchases   float64 `json:"purchases"`
	GrossProfit float64 `json:"gross_profit"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	NetProfit   float64 `json:"net_profit"`
}

// BuildProfitLoss aggregates account totals by type. The switch is
// exhaustive over the account enum so a new type cannot silently fall
// through into the wrong statement.
func BuildProfitLoss(totals []AccountTotal) ProfitLoss {
	var pl ProfitLoss
	for _, t := range totals {
		switch t.AccountType {
		case ledger.AccountSales:
			pl.Sales += t.TotalCredit - t.TotalDebit
		case ledger.AccountPurchase:
			pl.Purchases += t.TotalDebit - t.TotalCredit
		case ledger.AccountIncome:
			pl.Income += t.TotalCredit - t.TotalDebit
		case ledger.AccountExpenses:
			pl.Expenses += t.TotalDebit - t.TotalCredit
		case ledger.AccountSundryDebtors, ledger.AccountSundryCreditors,
			ledger.AccountBank, ledger.AccountCash, ledger.AccountDutiesTaxes,
			ledger.AccountAssets, ledger.AccountLiabilities, ledger.AccountCapital:
			// Balance-sheet types carry no P&L effect.
		}
	}
	pl.GrossProfit = pl.Sales - pl.Purchases
	pl.NetProfit = pl.GrossProfit + pl.Income - pl.Expenses
	return pl
}
