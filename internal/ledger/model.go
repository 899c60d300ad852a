package ledger

import (
	"time"

	"github.com/google/uuid"
)

// AccountType is the closed set of account classifications. Aggregations
// switch over it exhaustively; adding a value means revisiting the reports.
type AccountType string

const (
	AccountSundryDebtors   AccountType = "SUNDRY_DEBTORS"
	AccountSundryCreditors AccountType = "SUNDRY_CREDITORS"
	AccountBank            AccountType = "BANK"
	AccountCash            AccountType = "CASH"
	AccountSales           AccountType = "SALES"
	AccountPurchase        AccountType = "PURCHASE"
	AccountExpenses        AccountType = "EXPENSES"
	AccountIncome          AccountType = "INCOME"
	AccountDutiesTaxes     AccountType = "DUTIES_TAXES"
	AccountAssets          AccountType = "ASSETS"
	AccountLiabilities     AccountType = "LIABILITIES"
	AccountCapital         AccountType = "CAPITAL"
)

// Valid reports whether the account type is part of the closed enum.
func (t AccountType) Valid() bool {
	switch t {
	case AccountSundryDebtors, AccountSundryCreditors, AccountBank, AccountCash,
		AccountSales, AccountPurchase, AccountExpenses, AccountIncome,
		AccountDutiesTaxes, AccountAssets, AccountLiabilities, AccountCapital:
		return true
	}
	return false
}

// RefType identifies the origin of a posting group.
type RefType string

const (
	RefBill       RefType = "BILL"
	RefVoucher    RefType = "VOUCHER"
	RefOpening    RefType = "OPENING"
	RefAdjustment RefType = "ADJUSTMENT"
	RefManual     RefType = "MANUAL"
)

// UserCorrectable reports whether entries of this origin may be deleted
// directly. System-generated entries are only neutralised via reversal.
func (t RefType) UserCorrectable() bool {
	return t == RefManual || t == RefOpening
}

// Entry is one immutable ledger leg. Entries sharing a GroupID were written
// by the same posting event; ReversesGroup is set on reversal groups and
// names the group they neutralise.
type Entry struct {
	ID            int64
	FirmID        int64
	GroupID       uuid.UUID
	ReversesGroup *uuid.UUID
	EntryDate     time.Time
	AccountName   string
	AccountType   AccountType
	Debit         float64
	Credit        float64
	Narration     string
	RefType       RefType
	RefID         int64
	CreatedAt     time.Time
}
