package journals

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// JournalEntry captures a posted, balanced set of lines. Entries are never
// mutated once stored.
type JournalEntry struct {
	ID           uuid.UUID     `json:"id"`
	EntryNumber  string        `json:"entry_number"`
	Date         time.Time     `json:"date"`
	Description  *string       `json:"description,omitempty"`
	Reference    *string       `json:"reference,omitempty"`
	AccountID    uuid.UUID     `json:"account_id"`
	TotalDebits  float64       `json:"total_debits"`
	TotalCredits float64       `json:"total_credits"`
	CreatedAt    time.Time     `json:"created_at"`
	Lines        []JournalLine `json:"lines"`
}

// JournalLine stores debit or credit amount for an account.
type JournalLine struct {
	ID             uuid.UUID `json:"id"`
	JournalEntryID uuid.UUID `json:"journal_entry_id"`
	AccountID      uuid.UUID `json:"account_id"`
	Description    *string   `json:"description,omitempty"`
	Debit          float64   `json:"debit"`
	Credit         float64   `json:"credit"`
}

// SortByDateDesc orders entries newest first; ties fall back to entry number
// descending so listings are deterministic.
func SortByDateDesc(entries []JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].EntryNumber > entries[j].EntryNumber
	})
}
