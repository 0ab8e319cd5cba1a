package accounts

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five classifications.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether balances of this type grow with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account models a chart of accounts node.
type Account struct {
	ID        uuid.UUID   `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	ParentID  *uuid.UUID  `json:"parent_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Spec carries the administrator supplied fields of a new account.
type Spec struct {
	Code     string      `json:"code" yaml:"code" validate:"required,max=32"`
	Name     string      `json:"name" yaml:"name" validate:"required,max=120"`
	Type     AccountType `json:"type" yaml:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentID *uuid.UUID  `json:"parent_id,omitempty" yaml:"-"`
	// ParentCode is resolved to ParentID by Seed.
	ParentCode string `json:"-" yaml:"parent,omitempty"`
}

// SortByCode orders accounts by code, the registry's listing order.
func SortByCode(accounts []Account) {
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
}
