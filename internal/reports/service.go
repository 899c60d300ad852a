package reports

import (
	"context"
	"fmt"
	"time"
)

// Service computes report views over ledger totals, memoised briefly per
// firm through the cache.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs the reporting service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// AccountBalance returns one account's position as of a cutoff. It always
// reads the store directly; single-account sums are cheap.
func (s *Service) AccountBalance(ctx context.Context, firmID int64, accountName string, asOf *time.Time) (Balance, error) {
	total, err := s.repo.AccountTotals(ctx, firmID, accountName, asOf)
	if err != nil {
		return Balance{}, err
	}
	return BalanceOf(accountName, total.TotalDebit, total.TotalCredit), nil
}

// TrialBalance lists every account with activity in the window.
func (s *Service) TrialBalance(ctx context.Context, firmID int64, from, to *time.Time) (TrialBalance, error) {
	var tb TrialBalance
	key := reportKey(firmID, "tb", from, to)
	err := s.cache.Fetch(ctx, key, &tb, func() (any, error) {
		totals, err := s.repo.ListTotals(ctx, firmID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(totals), nil
	})
	return tb, err
}

// ProfitLoss builds the P&L statement for the window.
func (s *Service) ProfitLoss(ctx context.Context, firmID int64, from, to *time.Time) (ProfitLoss, error) {
	var pl ProfitLoss
	key := reportKey(firmID, "pl", from, to)
	err := s.cache.Fetch(ctx, key, &pl, func() (any, error) {
		totals, err := s.repo.ListTotals(ctx, firmID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildProfitLoss(totals), nil
	})
	return pl, err
}

// BalanceSheet builds the position as of a cutoff date.
func (s *Service) BalanceSheet(ctx context.Context, firmID int64, asOf *time.Time) (BalanceSheet, error) {
	var bs BalanceSheet
	key := reportKey(firmID, "bs", nil, asOf)
	err := s.cache.Fetch(ctx, key, &bs, func() (any, error) {
		totals, err := s.repo.ListTotals(ctx, firmID, nil, asOf)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(totals), nil
	})
	return bs, err
}

// CashFlow summarises bank and cash movement in the window.
func (s *Service) CashFlow(ctx context.Context, firmID int64, from, to *time.Time) (CashFlow, error) {
	var cf CashFlow
	key := reportKey(firmID, "cf", from, to)
	err := s.cache.Fetch(ctx, key, &cf, func() (any, error) {
		totals, err := s.repo.ListTotals(ctx, firmID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildCashFlow(totals), nil
	})
	return cf, err
}

// InvalidateFirm drops the firm's cached reports after a posting.
func (s *Service) InvalidateFirm(ctx context.Context, firmID int64) error {
	return s.cache.Invalidate(ctx, firmID)
}

func reportKey(firmID int64, kind string, from, to *time.Time) string {
	return fmt.Sprintf("reports:%d:%s:%s:%s", firmID, kind, datePart(from), datePart(to))
}

func datePart(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format("2006-01-02")
}
