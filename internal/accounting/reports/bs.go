package reports

import (
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

// BalanceSheetAccount summarises an account for assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// BalanceSheetSection contains the accounts and totals for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    float64               `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	AsOf                      time.Time           `json:"as_of"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	CurrentEarnings           float64             `json:"current_earnings"`
	TotalLiabilitiesAndEquity float64             `json:"total_liabilities_and_equity"`
	Balanced                  bool                `json:"balanced"`
}

// BuildBalanceSheet aggregates balances into assets, liabilities, and equity
// sections. Revenue less expense to date is carried in equity as current
// earnings so the statement balances without a closing entry.
func BuildBalanceSheet(tb TrialBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}

	for _, acc := range tb.Rows() {
		row := BalanceSheetAccount{Code: acc.Account.Code, Name: acc.Account.Name, Balance: acc.Balance}
		switch acc.Account.Type {
		case accounts.AccountTypeAsset:
			assets.Accounts = append(assets.Accounts, row)
			assets.Total += row.Balance
		case accounts.AccountTypeLiability:
			liabilities.Accounts = append(liabilities.Accounts, row)
			liabilities.Total += row.Balance
		case accounts.AccountTypeEquity:
			equity.Accounts = append(equity.Accounts, row)
			equity.Total += row.Balance
		}
	}

	earnings := BuildIncomeSummary(tb).NetIncome
	equity.Accounts = append(equity.Accounts, BalanceSheetAccount{Name: "Current Earnings", Balance: earnings})
	equity.Total += earnings

	total := liabilities.Total + equity.Total
	diff := assets.Total - total
	return BalanceSheet{
		AsOf:                      tb.AsOf,
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		CurrentEarnings:           earnings,
		TotalLiabilitiesAndEquity: total,
		Balanced:                  diff <= EquationTolerance && diff >= -EquationTolerance,
	}
}
