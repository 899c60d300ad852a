package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saralbooks/saralbooks/internal/shared"
)

// reversalPrefix marks entries written by Reverse.
const reversalPrefix = "REVERSAL: "

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates posting, reversing, and correcting ledger entries.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the posting engine.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates the posting group and writes it atomically.
func (s *Service) Post(ctx context.Context, input PostingInput) ([]int64, error) {
	var ids []int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		ids, err = s.PostTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, input.FirmID, input.ActorID, "ledger.post", input.RefType, input.RefID, map[string]any{
		"entries": len(ids),
	})
	return ids, nil
}

// PostTx is Post on a transaction the caller owns, so a document row and its
// posting group commit or roll back together. The caller audits after commit.
func (s *Service) PostTx(ctx context.Context, tx TxRepository, input PostingInput) ([]int64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return insertGroup(ctx, tx, input)
}

// Reverse neutralises every un-reversed posting group for the reference by
// writing swapped-leg entries. Reversing a reference with no outstanding
// groups is a no-op, which keeps reverse-then-repost flows idempotent.
func (s *Service) Reverse(ctx context.Context, firmID int64, refType RefType, refID, actorID int64) ([]int64, error) {
	var ids []int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		ids, err = s.ReverseTx(ctx, tx, firmID, refType, refID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.record(ctx, firmID, actorID, "ledger.reverse", refType, refID, map[string]any{
			"entries": len(ids),
		})
	}
	return ids, nil
}

// ReverseTx is Reverse on a caller-owned transaction.
func (s *Service) ReverseTx(ctx context.Context, tx TxRepository, firmID int64, refType RefType, refID int64) ([]int64, error) {
	return reverseRef(ctx, tx, firmID, refType, refID, s.now())
}

// Repost implements update-of-document semantics: reverse whatever is
// outstanding for the reference, then post the new group, in one transaction.
func (s *Service) Repost(ctx context.Context, firmID int64, refType RefType, refID int64, input PostingInput) ([]int64, error) {
	var ids []int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		ids, err = s.RepostTx(ctx, tx, firmID, refType, refID, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, firmID, input.ActorID, "ledger.repost", refType, refID, map[string]any{
		"entries": len(ids),
	})
	return ids, nil
}

// RepostTx is Repost on a caller-owned transaction.
func (s *Service) RepostTx(ctx context.Context, tx TxRepository, firmID int64, refType RefType, refID int64, input PostingInput) ([]int64, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := reverseRef(ctx, tx, firmID, refType, refID, s.now()); err != nil {
		return nil, err
	}
	return insertGroup(ctx, tx, input)
}

// DeleteEntry removes a user-correctable entry. System-generated entries are
// immutable outside the reversal path.
func (s *Service) DeleteEntry(ctx context.Context, firmID, entryID, actorID int64) error {
	var removed Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntry(ctx, firmID, entryID)
		if err != nil {
			return err
		}
		if !entry.RefType.UserCorrectable() {
			return ErrSystemEntryImmutable
		}
		removed = entry
		return tx.DeleteEntry(ctx, firmID, entryID)
	})
	if err != nil {
		return err
	}
	s.record(ctx, firmID, actorID, "ledger.delete_entry", removed.RefType, removed.RefID, map[string]any{
		"entry_id": entryID,
		"account":  removed.AccountName,
	})
	return nil
}

// PurgeRef deletes all entries for a document reference. Only the document
// removal flow may call this, after reversing and confirming the document has
// no dependants; it is not reachable from the entry-level API.
func (s *Service) PurgeRef(ctx context.Context, firmID int64, refType RefType, refID, actorID int64) (int64, error) {
	var removed int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		removed, err = s.PurgeRefTx(ctx, tx, firmID, refType, refID)
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.record(ctx, firmID, actorID, "ledger.purge", refType, refID, map[string]any{
			"entries": removed,
		})
	}
	return removed, nil
}

// PurgeRefTx is PurgeRef on a caller-owned transaction.
func (s *Service) PurgeRefTx(ctx context.Context, tx TxRepository, firmID int64, refType RefType, refID int64) (int64, error) {
	return tx.DeleteByRef(ctx, firmID, refType, refID)
}

// EntriesByRef lists all entries written for a reference.
func (s *Service) EntriesByRef(ctx context.Context, firmID int64, refType RefType, refID int64) ([]Entry, error) {
	return s.repo.ListByRef(ctx, firmID, refType, refID)
}

// EntriesByAccount lists an account's entries for drill-down, optionally
// bounded by dates.
func (s *Service) EntriesByAccount(ctx context.Context, firmID int64, accountName string, from, to *time.Time) ([]Entry, error) {
	return s.repo.ListByAccount(ctx, firmID, accountName, from, to)
}

func insertGroup(ctx context.Context, tx TxRepository, input PostingInput) ([]int64, error) {
	groupID := uuid.New()
	entries := make([]Entry, 0, len(input.Entries))
	for _, in := range input.Entries {
		entries = append(entries, Entry{
			FirmID:      input.FirmID,
			GroupID:     groupID,
			EntryDate:   input.Date,
			AccountName: in.AccountName,
			AccountType: in.AccountType,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Narration:   in.Narration,
			RefType:     input.RefType,
			RefID:       input.RefID,
		})
	}
	return tx.InsertEntries(ctx, entries)
}

// reverseRef writes one reversal group per outstanding posting group.
// Reversal groups themselves are never reversed, and a group already targeted
// by a reversal is skipped, so repeated calls settle into a no-op.
func reverseRef(ctx context.Context, tx TxRepository, firmID int64, refType RefType, refID int64, at time.Time) ([]int64, error) {
	existing, err := tx.GetByRef(ctx, firmID, refType, refID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}

	reversed := make(map[uuid.UUID]bool)
	groups := make(map[uuid.UUID][]Entry)
	order := make([]uuid.UUID, 0)
	for _, e := range existing {
		if e.ReversesGroup != nil {
			reversed[*e.ReversesGroup] = true
			continue
		}
		if _, ok := groups[e.GroupID]; !ok {
			order = append(order, e.GroupID)
		}
		groups[e.GroupID] = append(groups[e.GroupID], e)
	}

	var ids []int64
	for _, groupID := range order {
		if reversed[groupID] {
			continue
		}
		source := groupID
		reversalID := uuid.New()
		entries := make([]Entry, 0, len(groups[groupID]))
		for _, e := range groups[groupID] {
			entries = append(entries, Entry{
				FirmID:        e.FirmID,
				GroupID:       reversalID,
				ReversesGroup: &source,
				EntryDate:     at,
				AccountName:   e.AccountName,
				AccountType:   e.AccountType,
				Debit:         e.Credit,
				Credit:        e.Debit,
				Narration:     reversalPrefix + e.Narration,
				RefType:       e.RefType,
				RefID:         e.RefID,
			})
		}
		inserted, err := tx.InsertEntries(ctx, entries)
		if err != nil {
			return nil, err
		}
		ids = append(ids, inserted...)
	}
	return ids, nil
}

func (s *Service) record(ctx context.Context, firmID, actorID int64, action string, refType RefType, refID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		FirmID:   firmID,
		ActorID:  actorID,
		Action:   action,
		Entity:   string(refType),
		EntityID: fmt.Sprintf("%d", refID),
		Meta:     meta,
		At:       s.now(),
	})
}
