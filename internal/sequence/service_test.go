package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/saralbooks/saralbooks/testing"
)

type memorySequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemorySequenceRepo() *memorySequenceRepo {
	return &memorySequenceRepo{counters: make(map[string]int64)}
}

func scopeKey(firmID int64, fy string, docType DocumentType) string {
	return fmt.Sprintf("%d/%s/%s", firmID, fy, docType)
}

func (r *memorySequenceRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		snapshot[k] = v
	}
	if err := fn(ctx, &memorySequenceTx{repo: r}); err != nil {
		r.counters = snapshot
		return err
	}
	return nil
}

func (r *memorySequenceRepo) LastSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[scopeKey(firmID, fy, docType)], nil
}

type memorySequenceTx struct {
	repo *memorySequenceRepo
}

func (t *memorySequenceTx) IncrementSequence(ctx context.Context, firmID int64, fy string, docType DocumentType) (int64, error) {
	key := scopeKey(firmID, fy, docType)
	t.repo.counters[key]++
	return t.repo.counters[key], nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC) })
	return svc
}

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), "24-25"},
		{time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), "25-26"},
	}
	for _, tc := range cases {
		if got := FinancialYear(tc.date); got != tc.want {
			t.Fatalf("FinancialYear(%v) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestValidateFinancialYear(t *testing.T) {
	require.NoError(t, ValidateFinancialYear("25-26"))
	require.NoError(t, ValidateFinancialYear("99-00"))
	require.ErrorIs(t, ValidateFinancialYear("2025-26"), ErrInvalidFinancialYear)
	require.ErrorIs(t, ValidateFinancialYear("25-27"), ErrInvalidFinancialYear)
	require.ErrorIs(t, ValidateFinancialYear("25/26"), ErrInvalidFinancialYear)
	require.ErrorIs(t, ValidateFinancialYear(""), ErrInvalidFinancialYear)
}

func TestAllocateFormatsAndIncrements(t *testing.T) {
	svc := newTestService(newMemorySequenceRepo())

	first, err := svc.Allocate(context.Background(), 7, DocTypeSales, "")
	require.NoError(t, err)
	require.Equal(t, "INVF7-0001/25-26", first)

	second, err := svc.Allocate(context.Background(), 7, DocTypeSales, "")
	require.NoError(t, err)
	require.Equal(t, "INVF7-0002/25-26", second)

	// Different scopes advance independently.
	other, err := svc.Allocate(context.Background(), 7, DocTypePurchase, "")
	require.NoError(t, err)
	require.Equal(t, "PURF7-0001/25-26", other)

	prevYear, err := svc.Allocate(context.Background(), 7, DocTypeSales, "24-25")
	require.NoError(t, err)
	require.Equal(t, "INVF7-0001/24-25", prevYear)
}

func TestAllocateRejectsBadScope(t *testing.T) {
	svc := newTestService(newMemorySequenceRepo())

	_, err := svc.Allocate(context.Background(), 7, DocumentType("QUOTE"), "")
	require.ErrorIs(t, err, ErrUnknownDocumentType)

	_, err = svc.Allocate(context.Background(), 7, DocTypeSales, "25-27")
	require.ErrorIs(t, err, ErrInvalidFinancialYear)

	_, err = svc.Allocate(context.Background(), 0, DocTypeSales, "25-26")
	require.ErrorIs(t, err, ErrInvalidFirm)

	_, err = svc.Preview(context.Background(), -1, DocTypeSales, "25-26")
	require.ErrorIs(t, err, ErrInvalidFirm)
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	svc := newTestService(newMemorySequenceRepo())

	const n = 50
	numbers := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.Allocate(context.Background(), 3, DocTypeSales, "25-26")
			if err != nil {
				errs <- err
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := make(map[string]bool, n)
	for number := range numbers {
		require.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	require.Len(t, seen, n)

	// The run is contiguous: the next preview continues at n+1.
	next, err := svc.Preview(context.Background(), 3, DocTypeSales, "25-26")
	require.NoError(t, err)
	require.Equal(t, FormatNumber(DocTypeSales, 3, n+1, "25-26"), next)
}

func TestVoucherCap(t *testing.T) {
	repo := newMemorySequenceRepo()
	repo.counters[scopeKey(5, "25-26", DocTypePayment)] = voucherSeqCap - 1
	svc := newTestService(repo)

	number, err := svc.Allocate(context.Background(), 5, DocTypePayment, "25-26")
	require.NoError(t, err)
	require.Equal(t, "PVF5-9999/25-26", number)

	_, err = svc.Allocate(context.Background(), 5, DocTypePayment, "25-26")
	require.ErrorIs(t, err, ErrSequenceExhausted)

	// The failed allocation rolled back; the counter did not advance.
	last, err := repo.LastSequence(context.Background(), 5, "25-26", DocTypePayment)
	require.NoError(t, err)
	require.Equal(t, int64(voucherSeqCap), last)

	// Bills are not capped.
	repo.counters[scopeKey(5, "25-26", DocTypeSales)] = voucherSeqCap
	bill, err := svc.Allocate(context.Background(), 5, DocTypeSales, "25-26")
	require.NoError(t, err)
	require.Equal(t, "INVF5-10000/25-26", bill)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	repo := newMemorySequenceRepo()
	svc := newTestService(repo)

	for i := 0; i < 3; i++ {
		number, err := svc.Preview(context.Background(), 9, DocTypeJournal, "25-26")
		require.NoError(t, err)
		require.Equal(t, "JVF9-0001/25-26", number)
	}

	allocated, err := svc.Allocate(context.Background(), 9, DocTypeJournal, "25-26")
	require.NoError(t, err)
	require.Equal(t, "JVF9-0001/25-26", allocated)
}
