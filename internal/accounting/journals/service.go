package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Store persists journal entries. InsertEntry must write the header and all
// lines as one atomic unit.
type Store interface {
	InsertEntry(ctx context.Context, header JournalEntry, lines []JournalLine) (JournalEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (JournalEntry, error)
	ListByDateRange(ctx context.Context, rng shared.DateRange) ([]JournalEntry, error)
	NextEntryNumber(ctx context.Context) (string, error)
}

// AccountLookup resolves chart of accounts ids.
type AccountLookup interface {
	Get(ctx context.Context, id uuid.UUID) (accounts.Account, error)
}

// Invalidator is notified after every successful post.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Recorder counts posting outcomes.
type Recorder interface {
	JournalPosted(outcome string)
	// InvalidationFailed counts committed posts whose cache bump failed.
	InvalidationFailed()
}

// Service validates and posts journal entries.
type Service struct {
	store       Store
	accounts    AccountLookup
	invalidator Invalidator
	recorder    Recorder
	newID       func() uuid.UUID
	now         func() time.Time
}

// NewService constructs the ledger service.
func NewService(store Store, accounts AccountLookup) *Service {
	return &Service{store: store, accounts: accounts, newID: uuid.New, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithInvalidator registers a hook fired after successful posts.
func (s *Service) WithInvalidator(inv Invalidator) *Service {
	s.invalidator = inv
	return s
}

// WithRecorder registers a metrics recorder.
func (s *Service) WithRecorder(rec Recorder) *Service {
	s.recorder = rec
	return s
}

// Post validates input and persists the entry with its lines in a single
// store call. Nothing is written unless every check passes.
func (s *Service) Post(ctx context.Context, input PostingInput) (JournalEntry, error) {
	entry, err := s.post(ctx, input)
	s.record(err)
	return entry, err
}

func (s *Service) post(ctx context.Context, input PostingInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	totals := input.Totals()
	debits, credits := totals.Debits.InexactFloat64(), totals.Credits.InexactFloat64()
	if !totals.Balanced() {
		return JournalEntry{}, &shared.UnbalancedEntryError{TotalDebits: debits, TotalCredits: credits}
	}
	if err := s.resolveAccounts(ctx, input); err != nil {
		return JournalEntry{}, err
	}

	number := input.EntryNumber
	if number == "" {
		next, err := s.store.NextEntryNumber(ctx)
		if err != nil {
			return JournalEntry{}, shared.Source("next entry number", err)
		}
		number = next
	}

	header := JournalEntry{
		ID:           s.newID(),
		EntryNumber:  number,
		Date:         input.Date.UTC(),
		Description:  input.Description,
		Reference:    input.Reference,
		AccountID:    input.AccountID,
		TotalDebits:  debits,
		TotalCredits: credits,
		CreatedAt:    s.now().UTC(),
	}
	lines := make([]JournalLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, JournalLine{
			ID:             s.newID(),
			JournalEntryID: header.ID,
			AccountID:      line.AccountID,
			Description:    line.Description,
			Debit:          line.Debit,
			Credit:         line.Credit,
		})
	}

	entry, err := s.store.InsertEntry(ctx, header, lines)
	if err != nil {
		return JournalEntry{}, shared.Source("insert journal entry", err)
	}
	// The entry is committed; bump failures are counted, not returned.
	if s.invalidator != nil {
		if err := s.invalidator.Bump(ctx); err != nil && s.recorder != nil {
			s.recorder.InvalidationFailed()
		}
	}
	return entry, nil
}

// resolveAccounts checks the header account and every distinct line account.
func (s *Service) resolveAccounts(ctx context.Context, input PostingInput) error {
	seen := make(map[uuid.UUID]bool, len(input.Lines)+1)
	check := func(id uuid.UUID, line int) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		if _, err := s.accounts.Get(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return &shared.UnknownAccountError{AccountID: id, Line: line}
			}
			return shared.Source("resolve account", err)
		}
		return nil
	}
	for idx, line := range input.Lines {
		if err := check(line.AccountID, idx); err != nil {
			return err
		}
	}
	return check(input.AccountID, -1)
}

func (s *Service) record(err error) {
	if s.recorder == nil {
		return
	}
	outcome := "posted"
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrUnbalanced):
		outcome = "unbalanced"
	case errors.Is(err, shared.ErrUnknownAccount):
		outcome = "unknown_account"
	case errors.Is(err, shared.ErrValidation):
		outcome = "invalid"
	default:
		outcome = "error"
	}
	s.recorder.JournalPosted(outcome)
}

// Get loads one entry with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return JournalEntry{}, shared.NotFound("journal entry", id.String())
		}
		return JournalEntry{}, shared.Source("get journal entry", err)
	}
	return entry, nil
}

// List returns entries in rng, newest first, lines embedded.
func (s *Service) List(ctx context.Context, rng shared.DateRange) ([]JournalEntry, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	entries, err := s.store.ListByDateRange(ctx, rng)
	if err != nil {
		return nil, shared.Source("list journal entries", err)
	}
	SortByDateDesc(entries)
	return entries, nil
}

// Reverse posts a new entry that offsets every line of an existing one.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (JournalEntry, error) {
	original, err := s.Get(ctx, input.EntryID)
	if err != nil {
		return JournalEntry{}, err
	}
	date := original.Date
	if input.Date != nil {
		date = *input.Date
	}
	description := input.Description
	if description == nil {
		memo := fmt.Sprintf("Reversal of %s", original.EntryNumber)
		description = &memo
	}
	reference := "REV:" + original.EntryNumber
	return s.Post(ctx, PostingInput{
		EntryNumber: input.EntryNumber,
		Date:        date,
		Description: description,
		Reference:   &reference,
		AccountID:   original.AccountID,
		Lines:       reverseLines(original.Lines),
	})
}

func reverseLines(lines []JournalLine) []PostingLineInput {
	out := make([]PostingLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, PostingLineInput{
			AccountID:   line.AccountID,
			Description: line.Description,
			Debit:       line.Credit,
			Credit:      line.Debit,
		})
	}
	return out
}
