package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// balanceEpsilon absorbs floating rounding when comparing group totals.
const balanceEpsilon = 0.01

// EntryInput describes one leg of a posting request.
type EntryInput struct {
	AccountName string
	AccountType AccountType
	Debit       float64
	Credit      float64
	Narration   string
}

// PostingInput groups fields required to write one posting group.
type PostingInput struct {
	FirmID  int64
	Date    time.Time
	RefType RefType
	RefID   int64
	ActorID int64
	Entries []EntryInput
}

// Validate ensures the posting is balanced and every leg is well formed.
// Nothing is written when validation fails.
func (in PostingInput) Validate() error {
	if in.FirmID <= 0 {
		return errors.New("ledger: firm required")
	}
	if in.RefType == "" {
		return errors.New("ledger: ref type required")
	}
	if len(in.Entries) < 2 {
		return ErrTooFewLines
	}
	var debit, credit float64
	for idx, entry := range in.Entries {
		if entry.AccountName == "" {
			return fmt.Errorf("ledger: entry %d missing account name", idx)
		}
		if !entry.AccountType.Valid() {
			return fmt.Errorf("%w: entry %d type %q", ErrUnknownAccountType, idx, entry.AccountType)
		}
		if entry.Debit < 0 || entry.Credit < 0 {
			return fmt.Errorf("%w: entry %d negative amount", ErrInvalidEntry, idx)
		}
		if (entry.Debit > 0) == (entry.Credit > 0) {
			return fmt.Errorf("%w: entry %d", ErrInvalidEntry, idx)
		}
		debit += entry.Debit
		credit += entry.Credit
	}
	if math.Abs(debit-credit) > balanceEpsilon {
		return fmt.Errorf("%w: debit %.2f credit %.2f", ErrUnbalancedPosting, debit, credit)
	}
	return nil
}
