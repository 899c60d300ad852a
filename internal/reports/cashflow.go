package reports

import "github.com/saralbooks/saralbooks/internal/ledger"

// CashFlow summarises movement through bank and cash accounts in a window.
type CashFlow struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// BuildCashFlow totals debits (money in) and credits (money out) across
// BANK and CASH accounts.
func BuildCashFlow(totals []AccountTotal) CashFlow {
	var cf CashFlow
	for _, t := range totals {
		if t.AccountType != ledger.AccountBank && t.AccountType != ledger.AccountCash {
			continue
		}
		cf.Inflow += t.TotalDebit
		cf.Outflow += t.TotalCredit
	}
	cf.Net = cf.Inflow - cf.Outflow
	return cf
}
