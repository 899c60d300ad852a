package ledger

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/saralbooks/saralbooks/testing"
)

type memoryLedgerRepo struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{}
}

func (r *memoryLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]Entry, len(r.entries))
	copy(snapshot, r.entries)
	snapID := r.nextID
	if err := fn(ctx, &memoryLedgerTx{repo: r}); err != nil {
		r.entries = snapshot
		r.nextID = snapID
		return err
	}
	return nil
}

func (r *memoryLedgerRepo) ListByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterByRef(r.entries, firmID, refType, refID), nil
}

func (r *memoryLedgerRepo) ListByAccount(ctx context.Context, firmID int64, accountName string, from, to *time.Time) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.FirmID != firmID || e.AccountName != accountName {
			continue
		}
		if from != nil && e.EntryDate.Before(*from) {
			continue
		}
		if to != nil && e.EntryDate.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type memoryLedgerTx struct {
	repo *memoryLedgerRepo
}

func (t *memoryLedgerTx) InsertEntries(ctx context.Context, entries []Entry) ([]int64, error) {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		t.repo.nextID++
		e.ID = t.repo.nextID
		e.CreatedAt = time.Now()
		t.repo.entries = append(t.repo.entries, e)
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (t *memoryLedgerTx) GetByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error) {
	return filterByRef(t.repo.entries, firmID, refType, refID), nil
}

func (t *memoryLedgerTx) GetEntry(ctx context.Context, firmID, entryID int64) (Entry, error) {
	for _, e := range t.repo.entries {
		if e.FirmID == firmID && e.ID == entryID {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

func (t *memoryLedgerTx) DeleteEntry(ctx context.Context, firmID, entryID int64) error {
	for idx, e := range t.repo.entries {
		if e.FirmID == firmID && e.ID == entryID {
			t.repo.entries = append(t.repo.entries[:idx], t.repo.entries[idx+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

func (t *memoryLedgerTx) DeleteByRef(ctx context.Context, firmID int64, refType RefType, refID int64) (int64, error) {
	var kept []Entry
	var removed int64
	for _, e := range t.repo.entries {
		if e.FirmID == firmID && e.RefType == refType && e.RefID == refID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	t.repo.entries = kept
	return removed, nil
}

func filterByRef(entries []Entry, firmID int64, refType RefType, refID int64) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.FirmID == firmID && e.RefType == refType && e.RefID == refID {
			out = append(out, e)
		}
	}
	return out
}

func netBalance(t *testing.T, repo *memoryLedgerRepo, firmID int64, account string) float64 {
	t.Helper()
	entries, err := repo.ListByAccount(context.Background(), firmID, account, nil, nil)
	require.NoError(t, err)
	var net float64
	for _, e := range entries {
		net += e.Debit - e.Credit
	}
	return net
}

func salesPosting(refID int64) PostingInput {
	return PostingInput{
		FirmID:  1,
		Date:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		RefType: RefBill,
		RefID:   refID,
		ActorID: 10,
		Entries: []EntryInput{
			{AccountName: "Acme Traders", AccountType: AccountSundryDebtors, Debit: 1180, Narration: "Sale"},
			{AccountName: "Sales", AccountType: AccountSales, Credit: 1000, Narration: "Sale"},
			{AccountName: "CGST Output", AccountType: AccountDutiesTaxes, Credit: 90, Narration: "Sale"},
			{AccountName: "SGST Output", AccountType: AccountDutiesTaxes, Credit: 90, Narration: "Sale"},
		},
	}
}

func TestPostWritesBalancedGroup(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	ids, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)
	require.Len(t, ids, 4)

	entries, err := repo.ListByRef(context.Background(), 1, RefBill, 42)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for _, e := range entries {
		require.Equal(t, entries[0].GroupID, e.GroupID)
		require.Nil(t, e.ReversesGroup)
	}
	require.Equal(t, float64(1180), netBalance(t, repo, 1, "Acme Traders"))
	require.Equal(t, float64(-1000), netBalance(t, repo, 1, "Sales"))
}

func TestPostValidation(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)
	base := salesPosting(1)

	unbalanced := base
	unbalanced.Entries = []EntryInput{
		{AccountName: "A", AccountType: AccountCash, Debit: 100},
		{AccountName: "B", AccountType: AccountSales, Credit: 90},
	}
	_, err := svc.Post(context.Background(), unbalanced)
	require.ErrorIs(t, err, ErrUnbalancedPosting)

	short := base
	short.Entries = base.Entries[:1]
	_, err = svc.Post(context.Background(), short)
	require.ErrorIs(t, err, ErrTooFewLines)

	bothSides := base
	bothSides.Entries = []EntryInput{
		{AccountName: "A", AccountType: AccountCash, Debit: 100, Credit: 100},
		{AccountName: "B", AccountType: AccountSales, Credit: 0},
	}
	_, err = svc.Post(context.Background(), bothSides)
	require.ErrorIs(t, err, ErrInvalidEntry)

	badType := base
	badType.Entries = []EntryInput{
		{AccountName: "A", AccountType: AccountType("WEIRD"), Debit: 100},
		{AccountName: "B", AccountType: AccountSales, Credit: 100},
	}
	_, err = svc.Post(context.Background(), badType)
	require.ErrorIs(t, err, ErrUnknownAccountType)

	// Nothing was written by any failed attempt.
	require.Empty(t, repo.entries)
}

func TestPostToleratesRoundingResidue(t *testing.T) {
	svc := NewService(newMemoryLedgerRepo(), nil)
	input := salesPosting(7)
	input.Entries = []EntryInput{
		{AccountName: "A", AccountType: AccountCash, Debit: 100.004},
		{AccountName: "B", AccountType: AccountSales, Credit: 100},
	}
	_, err := svc.Post(context.Background(), input)
	require.NoError(t, err)
}

func TestReverseNeutralisesAndIsIdempotent(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)

	ids, err := svc.Reverse(context.Background(), 1, RefBill, 42, 10)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	entries, err := repo.ListByRef(context.Background(), 1, RefBill, 42)
	require.NoError(t, err)
	require.Len(t, entries, 8)
	var reversals int
	for _, e := range entries {
		if e.ReversesGroup != nil {
			reversals++
			require.True(t, strings.HasPrefix(e.Narration, "REVERSAL: "))
		}
	}
	require.Equal(t, 4, reversals)

	// Balances are as if the bill was never posted.
	require.Zero(t, netBalance(t, repo, 1, "Acme Traders"))
	require.Zero(t, netBalance(t, repo, 1, "Sales"))
	require.Zero(t, netBalance(t, repo, 1, "CGST Output"))

	// A second reversal is a no-op.
	again, err := svc.Reverse(context.Background(), 1, RefBill, 42, 10)
	require.NoError(t, err)
	require.Empty(t, again)
	entries, err = repo.ListByRef(context.Background(), 1, RefBill, 42)
	require.NoError(t, err)
	require.Len(t, entries, 8)
}

func TestReverseMissingRefIsNoop(t *testing.T) {
	svc := NewService(newMemoryLedgerRepo(), nil)
	ids, err := svc.Reverse(context.Background(), 1, RefBill, 999, 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRepostMatchesFreshPost(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)

	updated := salesPosting(42)
	updated.Entries = []EntryInput{
		{AccountName: "Acme Traders", AccountType: AccountSundryDebtors, Debit: 590, Narration: "Sale"},
		{AccountName: "Sales", AccountType: AccountSales, Credit: 500, Narration: "Sale"},
		{AccountName: "CGST Output", AccountType: AccountDutiesTaxes, Credit: 45, Narration: "Sale"},
		{AccountName: "SGST Output", AccountType: AccountDutiesTaxes, Credit: 45, Narration: "Sale"},
	}
	_, err = svc.Repost(context.Background(), 1, RefBill, 42, updated)
	require.NoError(t, err)

	fresh := newMemoryLedgerRepo()
	freshSvc := NewService(fresh, nil)
	_, err = freshSvc.Post(context.Background(), updated)
	require.NoError(t, err)

	for _, account := range []string{"Acme Traders", "Sales", "CGST Output", "SGST Output"} {
		require.Equal(t, netBalance(t, fresh, 1, account), netBalance(t, repo, 1, account), account)
	}
}

func TestRepostAfterReverseDoesNotDoubleReverse(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)
	_, err = svc.Repost(context.Background(), 1, RefBill, 42, salesPosting(42))
	require.NoError(t, err)
	_, err = svc.Repost(context.Background(), 1, RefBill, 42, salesPosting(42))
	require.NoError(t, err)

	// Net position equals exactly one posting of the bill.
	require.Equal(t, float64(1180), netBalance(t, repo, 1, "Acme Traders"))
	require.Equal(t, float64(-1000), netBalance(t, repo, 1, "Sales"))
}

func TestDeleteEntryRules(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)

	manual := PostingInput{
		FirmID:  1,
		Date:    time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		RefType: RefOpening,
		RefID:   1,
		Entries: []EntryInput{
			{AccountName: "Cash", AccountType: AccountCash, Debit: 5000},
			{AccountName: "Capital", AccountType: AccountCapital, Credit: 5000},
		},
	}
	manualIDs, err := svc.Post(context.Background(), manual)
	require.NoError(t, err)

	// Opening entries are user-correctable.
	require.NoError(t, svc.DeleteEntry(context.Background(), 1, manualIDs[0], 10))

	// System-generated entries are not.
	billEntries, err := repo.ListByRef(context.Background(), 1, RefBill, 42)
	require.NoError(t, err)
	err = svc.DeleteEntry(context.Background(), 1, billEntries[0].ID, 10)
	require.ErrorIs(t, err, ErrSystemEntryImmutable)

	require.ErrorIs(t, svc.DeleteEntry(context.Background(), 1, 9999, 10), ErrEntryNotFound)
}

func TestPurgeRef(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil)

	_, err := svc.Post(context.Background(), salesPosting(42))
	require.NoError(t, err)
	_, err = svc.Reverse(context.Background(), 1, RefBill, 42, 10)
	require.NoError(t, err)

	removed, err := svc.PurgeRef(context.Background(), 1, RefBill, 42, 10)
	require.NoError(t, err)
	require.Equal(t, int64(8), removed)

	entries, err := repo.ListByRef(context.Background(), 1, RefBill, 42)
	require.NoError(t, err)
	require.Empty(t, entries)
}
