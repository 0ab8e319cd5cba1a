package journals

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// BalanceTolerance is the largest debit/credit difference accepted on post.
var BalanceTolerance = decimal.New(1, -2)

// PostingLineInput describes a journal line for posting request.
type PostingLineInput struct {
	AccountID   uuid.UUID `json:"account_id"`
	Description *string   `json:"description,omitempty"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	EntryNumber string             `json:"entry_number"`
	Date        time.Time          `json:"date"`
	Description *string            `json:"description,omitempty"`
	Reference   *string            `json:"reference,omitempty"`
	AccountID   uuid.UUID          `json:"account_id"`
	Lines       []PostingLineInput `json:"lines"`
}

// Totals are the exact sums of a posting's lines.
type Totals struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Balanced reports whether debits and credits agree within BalanceTolerance.
func (t Totals) Balanced() bool {
	return !t.Debits.Sub(t.Credits).Abs().GreaterThan(BalanceTolerance)
}

// Validate checks shape only: line count, account ids, non-negative amounts.
func (in PostingInput) Validate() error {
	if in.Date.IsZero() {
		return shared.Invalid("date", "required")
	}
	if in.AccountID == uuid.Nil {
		return shared.Invalid("account_id", "required")
	}
	if len(in.Lines) < 2 {
		return shared.Invalid("lines", "journal requires at least two lines")
	}
	for idx, line := range in.Lines {
		if line.AccountID == uuid.Nil {
			return shared.Invalid(fmt.Sprintf("lines[%d].account_id", idx), "required")
		}
		if line.Debit < 0 || line.Credit < 0 {
			return shared.Invalid(fmt.Sprintf("lines[%d]", idx), "negative amount")
		}
	}
	return nil
}

// Totals sums the line amounts with decimal arithmetic.
func (in PostingInput) Totals() Totals {
	t := Totals{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, line := range in.Lines {
		t.Debits = t.Debits.Add(decimal.NewFromFloat(line.Debit))
		t.Credits = t.Credits.Add(decimal.NewFromFloat(line.Credit))
	}
	return t
}

// ReverseInput asks for an offsetting entry of an existing one.
type ReverseInput struct {
	EntryID     uuid.UUID  `json:"-"`
	EntryNumber string     `json:"entry_number"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
}
