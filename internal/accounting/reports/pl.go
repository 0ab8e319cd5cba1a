package reports

import "github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"

// IncomeAccount represents a revenue or expense account summary.
type IncomeAccount struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// IncomeSection groups accounts by nature.
type IncomeSection struct {
	Label    string          `json:"label"`
	Accounts []IncomeAccount `json:"accounts"`
	Total    float64         `json:"total"`
}

// IncomeSummary is the ledger-side view of earnings to date.
type IncomeSummary struct {
	Revenue   IncomeSection `json:"revenue"`
	Expense   IncomeSection `json:"expense"`
	NetIncome float64       `json:"net_income"`
}

// BuildIncomeSummary splits revenue and expense balances out of a trial balance.
func BuildIncomeSummary(tb TrialBalance) IncomeSummary {
	revenue := IncomeSection{Label: "Revenue"}
	expense := IncomeSection{Label: "Expense"}

	for _, acc := range tb.Rows() {
		row := IncomeAccount{Code: acc.Account.Code, Name: acc.Account.Name, Amount: acc.Balance}
		switch acc.Account.Type {
		case accounts.AccountTypeRevenue:
			revenue.Accounts = append(revenue.Accounts, row)
			revenue.Total += row.Amount
		case accounts.AccountTypeExpense:
			expense.Accounts = append(expense.Accounts, row)
			expense.Total += row.Amount
		}
	}

	return IncomeSummary{
		Revenue:   revenue,
		Expense:   expense,
		NetIncome: revenue.Total - expense.Total,
	}
}
