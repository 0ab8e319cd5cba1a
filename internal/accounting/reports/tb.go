package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

// EquationTolerance bounds the accepted gap between debit-normal and
// credit-normal totals.
const EquationTolerance = 0.01

// AccountBalance is one account's position in a trial balance. Debit and
// Credit are the raw activity; Balance is signed by the account's normal side.
type AccountBalance struct {
	Account accounts.Account `json:"account"`
	Debit   float64          `json:"debit"`
	Credit  float64          `json:"credit"`
	Balance float64          `json:"balance"`
}

// apply adds a line using the normal balance side of the account type.
func (a *AccountBalance) apply(debit, credit float64) {
	a.Debit += debit
	a.Credit += credit
	if a.Account.Type.DebitNormal() {
		a.Balance += debit - credit
		return
	}
	a.Balance += credit - debit
}

// GroupKey returns a key used for grouping trial balance rows.
func (a AccountBalance) GroupKey() string {
	code := a.Account.Code
	if idx := strings.Index(code, "."); idx > 0 {
		return code[:idx]
	}
	if len(code) >= 2 {
		return code[:2]
	}
	return code
}

// TrialBalance maps every known account to its balance as of a point in time.
type TrialBalance struct {
	AsOf     time.Time
	Balances map[uuid.UUID]AccountBalance
}

// Get returns the balance of one account.
func (tb TrialBalance) Get(id uuid.UUID) (AccountBalance, bool) {
	row, ok := tb.Balances[id]
	return row, ok
}

// Rows lists balances ordered by account code.
func (tb TrialBalance) Rows() []AccountBalance {
	rows := make([]AccountBalance, 0, len(tb.Balances))
	for _, row := range tb.Balances {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Account.Code < rows[j].Account.Code })
	return rows
}

// Equation compares debit-normal and credit-normal balance totals.
type Equation struct {
	DebitNormal  float64 `json:"debit_normal"`
	CreditNormal float64 `json:"credit_normal"`
	Holds        bool    `json:"holds"`
}

// Equation sums balances on each side of the accounting equation.
func (tb TrialBalance) Equation() Equation {
	var eq Equation
	for _, row := range tb.Balances {
		if row.Account.Type.DebitNormal() {
			eq.DebitNormal += row.Balance
		} else {
			eq.CreditNormal += row.Balance
		}
	}
	diff := eq.DebitNormal - eq.CreditNormal
	eq.Holds = diff <= EquationTolerance && diff >= -EquationTolerance
	return eq
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Balance float64 `json:"balance"`
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key      string                `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Debit    float64               `json:"debit"`
	Credit   float64               `json:"credit"`
}

// GroupedTrialBalance is the presentation form rendered by the API and CLI.
type GroupedTrialBalance struct {
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  float64             `json:"total_debit"`
	TotalCredit float64             `json:"total_credit"`
}

// BuildTrialBalance groups trial balance rows by code prefix.
func BuildTrialBalance(tb TrialBalance) GroupedTrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, acc := range tb.Rows() {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		grp.Accounts = append(grp.Accounts, TrialBalanceAccount{
			Code:    acc.Account.Code,
			Name:    acc.Account.Name,
			Type:    string(acc.Account.Type),
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Balance: acc.Balance,
		})
		grp.Debit += acc.Debit
		grp.Credit += acc.Credit
	}

	sort.Strings(keys)
	result := GroupedTrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit += grp.Debit
		result.TotalCredit += grp.Credit
	}
	return result
}
