package accounts

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type chartFile struct {
	Accounts []Spec `yaml:"accounts"`
}

// LoadChart parses a YAML chart of accounts:
//
//	accounts:
//	  - {code: "1000", name: Assets, type: ASSET}
//	  - {code: "1010", name: Cash on Hand, type: ASSET, parent: "1000"}
//
// Parents must appear before their children.
func LoadChart(r io.Reader) ([]Spec, error) {
	var file chartFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("accounts: parse chart: %w", err)
	}
	seen := make(map[string]bool, len(file.Accounts))
	for idx, spec := range file.Accounts {
		if spec.Code == "" {
			return nil, fmt.Errorf("accounts: chart entry %d missing code", idx)
		}
		if seen[spec.Code] {
			return nil, fmt.Errorf("accounts: chart code %s listed twice", spec.Code)
		}
		if spec.ParentCode != "" && !seen[spec.ParentCode] {
			return nil, fmt.Errorf("accounts: chart code %s references parent %s before it is defined", spec.Code, spec.ParentCode)
		}
		seen[spec.Code] = true
	}
	return file.Accounts, nil
}

// DefaultChart returns a starter chart for a small retail business.
func DefaultChart() []Spec {
	return []Spec{
		{Code: "1000", Name: "Assets", Type: AccountTypeAsset},
		{Code: "1010", Name: "Cash on Hand", Type: AccountTypeAsset, ParentCode: "1000"},
		{Code: "1020", Name: "Bank", Type: AccountTypeAsset, ParentCode: "1000"},
		{Code: "1100", Name: "Accounts Receivable", Type: AccountTypeAsset, ParentCode: "1000"},
		{Code: "1200", Name: "Inventory", Type: AccountTypeAsset, ParentCode: "1000"},
		{Code: "2000", Name: "Liabilities", Type: AccountTypeLiability},
		{Code: "2010", Name: "Accounts Payable", Type: AccountTypeLiability, ParentCode: "2000"},
		{Code: "3000", Name: "Equity", Type: AccountTypeEquity},
		{Code: "3010", Name: "Owner's Capital", Type: AccountTypeEquity, ParentCode: "3000"},
		{Code: "4000", Name: "Revenue", Type: AccountTypeRevenue},
		{Code: "4010", Name: "Sales", Type: AccountTypeRevenue, ParentCode: "4000"},
		{Code: "5000", Name: "Expenses", Type: AccountTypeExpense},
		{Code: "5010", Name: "Cost of Goods Sold", Type: AccountTypeExpense, ParentCode: "5000"},
		{Code: "5020", Name: "Rent", Type: AccountTypeExpense, ParentCode: "5000"},
		{Code: "5030", Name: "Wages", Type: AccountTypeExpense, ParentCode: "5000"},
		{Code: "5040", Name: "Utilities", Type: AccountTypeExpense, ParentCode: "5000"},
	}
}
