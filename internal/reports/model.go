// Package reports computes balances and financial statements from ledger
// entries on demand. Nothing here is persisted; the ledger is the single
// source of truth and every report is derived fresh from it.
package reports

import (
	"math"

	"github.com/saralbooks/saralbooks/internal/ledger"
)

// BalanceType is the side a balance sits on.
type BalanceType string

const (
	BalanceDr BalanceType = "Dr"
	BalanceCr BalanceType = "Cr"
)

// AccountTotal is the summed debit and credit for one account over a window.
type AccountTotal struct {
	AccountName string             `json:"account_name"`
	AccountType ledger.AccountType `json:"account_type"`
	TotalDebit  float64            `json:"total_debit"`
	TotalCredit float64            `json:"total_credit"`
}

// Balance is the signed position of one account. Amount is always
// non-negative; Type carries the side.
type Balance struct {
	AccountName string      `json:"account_name"`
	TotalDebit  float64     `json:"total_debit"`
	TotalCredit float64     `json:"total_credit"`
	Balance     float64     `json:"balance"`
	Type        BalanceType `json:"balance_type"`
	Amount      float64     `json:"balance_amount"`
}

// BalanceOf applies the uniform sign convention: debit minus credit, Dr when
// non-negative.
func BalanceOf(name string, totalDebit, totalCredit float64) Balance {
	b := Balance{
		AccountName: name,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Balance:     totalDebit - totalCredit,
	}
	if b.Balance >= 0 {
		b.Type = BalanceDr
	} else {
		b.Type = BalanceCr
	}
	b.Amount = math.Abs(b.Balance)
	return b
}
