package ledger

import "errors"

var (
	// ErrUnbalancedPosting indicates debit != credit across a posting group.
	ErrUnbalancedPosting = errors.New("ledger: posting group must balance")
	// ErrTooFewLines indicates less than two entries in a posting group.
	ErrTooFewLines = errors.New("ledger: posting requires at least two entries")
	// ErrInvalidEntry indicates an entry without exactly one non-zero side.
	ErrInvalidEntry = errors.New("ledger: entry must carry exactly one of debit or credit")
	// ErrUnknownAccountType indicates an account type outside the closed enum.
	ErrUnknownAccountType = errors.New("ledger: unknown account type")
	// ErrEntryNotFound indicates a missing ledger entry.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrSystemEntryImmutable indicates a direct edit/delete of a
	// BILL/VOUCHER-sourced entry outside the reversal path.
	ErrSystemEntryImmutable = errors.New("ledger: system entries change only via reversal")
	// ErrStoreUnavailable indicates a transaction-level store failure; the
	// operation rolled back and the caller may retry.
	ErrStoreUnavailable = errors.New("ledger: store unavailable")
)
