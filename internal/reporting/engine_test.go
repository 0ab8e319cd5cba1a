package reporting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

var errBoom = errors.New("boom")

type fakeSources struct {
	sales     []Sale
	expenses  []Expense
	inventory []InventoryItem
	stock     []BranchStock
	products  []Product
	branches  []Branch
	chart     []accounts.Account
	entries   []journals.JournalEntry

	failSales, failExpenses, failInventory, failStock, failProducts, failBranches, failEntries bool
}

func (f *fakeSources) ListSales(_ context.Context, rng shared.DateRange, branchID *uuid.UUID) ([]Sale, error) {
	if f.failSales {
		return nil, errBoom
	}
	var out []Sale
	for _, s := range f.sales {
		if !rng.Contains(s.CreatedAt) {
			continue
		}
		if branchID != nil && s.BranchID != *branchID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSources) ListExpenses(_ context.Context, filter ExpenseFilter) ([]Expense, error) {
	if f.failExpenses {
		return nil, errBoom
	}
	var out []Expense
	for _, e := range f.expenses {
		if !filter.Range.Contains(e.Date) {
			continue
		}
		if filter.BranchID != nil && e.BranchID != *filter.BranchID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeSources) ListAll(context.Context) ([]InventoryItem, error) {
	if f.failInventory {
		return nil, errBoom
	}
	return f.inventory, nil
}

func (f *fakeSources) ListByProduct(_ context.Context, productID uuid.UUID) ([]BranchStock, error) {
	if f.failStock {
		return nil, errBoom
	}
	var out []BranchStock
	for _, s := range f.stock {
		if s.ProductID == productID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSources) ListByBranch(_ context.Context, branchID uuid.UUID) ([]BranchStock, error) {
	if f.failStock {
		return nil, errBoom
	}
	var out []BranchStock
	for _, s := range f.stock {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSources) ListProducts(context.Context) ([]Product, error) {
	if f.failProducts {
		return nil, errBoom
	}
	return f.products, nil
}

func (f *fakeSources) ListBranches(context.Context) ([]Branch, error) {
	if f.failBranches {
		return nil, errBoom
	}
	return f.branches, nil
}

type fakeAccounts struct{ chart []accounts.Account }

func (f fakeAccounts) List(context.Context) ([]accounts.Account, error) { return f.chart, nil }

type fakeEntries struct{ src *fakeSources }

func (f fakeEntries) List(_ context.Context, rng shared.DateRange) ([]journals.JournalEntry, error) {
	if f.src.failEntries {
		return nil, errBoom
	}
	var out []journals.JournalEntry
	for _, e := range f.src.entries {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func newEngine(src *fakeSources) *Engine {
	return NewEngine(Sources{
		Sales:     src,
		Expenses:  src,
		Inventory: src,
		Products:  src,
		Branches:  src,
		Accounts:  fakeAccounts{chart: src.chart},
		Entries:   fakeEntries{src: src},
	})
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC)
}

var (
	marchStart = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	marchEnd   = time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
)

func TestSalesReportBreakdowns(t *testing.T) {
	widget := Product{ID: uuid.New(), Name: "Widget", CostPrice: 4}
	gadget := Product{ID: uuid.New(), Name: "Gadget", CostPrice: 10}
	ghost := uuid.New()
	src := &fakeSources{
		products: []Product{widget, gadget},
		sales: []Sale{
			{ID: uuid.New(), TotalAmount: 100, PaymentType: PaymentCash, CreatedAt: day(2),
				Items: []SaleItem{{ProductID: widget.ID, Quantity: 10, Price: 10}}},
			{ID: uuid.New(), TotalAmount: 60, PaymentType: "CARD", CreatedAt: day(2),
				Items: []SaleItem{{ProductID: gadget.ID, Quantity: 2, Price: 20}, {ProductID: ghost, Quantity: 1, Price: 20}}},
			{ID: uuid.New(), TotalAmount: 999, PaymentType: PaymentCash, CreatedAt: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)},
		},
	}

	report, err := newEngine(src).SalesReport(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	assert.InDelta(t, 160, report.TotalSales, 1e-9)
	assert.Equal(t, 2, report.Transactions)
	assert.InDelta(t, 100, report.ByPaymentType[PaymentCash], 1e-9)
	assert.InDelta(t, 60, report.ByPaymentType["CARD"], 1e-9)
	assert.InDelta(t, 160, report.ByDate["2024-03-02"], 1e-9)

	require.Len(t, report.TopProducts, 3)
	assert.Equal(t, "Widget", report.TopProducts[0].ProductName)
	assert.Equal(t, "Gadget", report.TopProducts[1].ProductName)
	assert.Equal(t, unknownProduct, report.TopProducts[2].ProductName)
	assert.Equal(t, 10, report.TopProducts[0].Quantity)
}

func TestSalesReportCapsTopProducts(t *testing.T) {
	src := &fakeSources{}
	sale := Sale{ID: uuid.New(), PaymentType: PaymentCash, CreatedAt: day(5)}
	for i := 0; i < 15; i++ {
		p := Product{ID: uuid.New(), Name: fmt.Sprintf("P%02d", i)}
		src.products = append(src.products, p)
		// Products 0-4 all earn 50 so their relative order must survive the sort.
		price := 50.0
		if i >= 5 {
			price = float64(i)
		}
		sale.Items = append(sale.Items, SaleItem{ProductID: p.ID, Quantity: 1, Price: price})
		sale.TotalAmount += price
	}
	src.sales = []Sale{sale}

	report, err := newEngine(src).SalesReport(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	require.Len(t, report.TopProducts, TopProductLimit)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("P%02d", i), report.TopProducts[i].ProductName)
	}
	assert.Equal(t, "P14", report.TopProducts[5].ProductName)
	for i := 1; i < len(report.TopProducts); i++ {
		assert.GreaterOrEqual(t, report.TopProducts[i-1].Revenue, report.TopProducts[i].Revenue)
	}
}

func TestSalesReportGroupsByUTCDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	src := &fakeSources{sales: []Sale{
		// 2024-03-10 02:00 in Jakarta is still 9 March in UTC.
		{ID: uuid.New(), TotalAmount: 40, PaymentType: PaymentCash, CreatedAt: time.Date(2024, time.March, 10, 2, 0, 0, 0, jakarta)},
	}}

	report, err := newEngine(src).SalesReport(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	assert.InDelta(t, 40, report.ByDate["2024-03-09"], 1e-9)
	assert.NotContains(t, report.ByDate, "2024-03-10")
	assert.Empty(t, report.TopProducts)
	assert.NotNil(t, report.TopProducts)
}

func TestSalesReportRejectsBadWindow(t *testing.T) {
	engine := newEngine(&fakeSources{})

	_, err := engine.SalesReport(context.Background(), marchEnd, marchStart)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = engine.SalesReport(context.Background(), time.Time{}, marchEnd)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestInventoryReportValuesStock(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "P", CostPrice: 3, Category: "Tools"}
	q := Product{ID: uuid.New(), Name: "Q", CostPrice: 2, Category: "Tools"}
	r := Product{ID: uuid.New(), Name: "R", CostPrice: 1, Category: "Paint"}
	src := &fakeSources{
		products: []Product{p, q, r},
		inventory: []InventoryItem{
			{ID: uuid.New(), ProductID: p.ID, Quantity: 5, LowStockAt: 10},
			{ID: uuid.New(), ProductID: q.ID, Quantity: 10, LowStockAt: 10},
			{ID: uuid.New(), ProductID: r.ID, Quantity: 50, LowStockAt: 10},
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, LowStockAt: 10},
		},
	}

	report, err := newEngine(src).InventoryReport(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 15+20+50, report.TotalValue, 1e-9)

	require.Len(t, report.LowStock, 2)
	assert.Equal(t, LowStockItem{ProductID: p.ID, ProductName: "P", CurrentQuantity: 5, LowStockAt: 10}, report.LowStock[0])
	assert.Equal(t, "Q", report.LowStock[1].ProductName)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, "Tools", report.ByCategory[0].Category)
	assert.InDelta(t, 35, report.ByCategory[0].Value, 1e-9)
	assert.Equal(t, "Paint", report.ByCategory[1].Category)
	assert.InDelta(t, 50, report.ByCategory[1].Value, 1e-9)
}

func TestCashFlowNetsCashSalesAgainstExpenses(t *testing.T) {
	src := &fakeSources{
		sales: []Sale{
			{ID: uuid.New(), TotalAmount: 500, PaymentType: PaymentCash, CreatedAt: day(3)},
			{ID: uuid.New(), TotalAmount: 250, PaymentType: "CARD", CreatedAt: day(3)},
		},
		expenses: []Expense{
			{ID: uuid.New(), Category: "rent", Amount: 200, Date: day(4)},
			{ID: uuid.New(), Category: "rent", Amount: 900, Date: time.Date(2024, time.February, 4, 0, 0, 0, 0, time.UTC)},
		},
	}

	report, err := newEngine(src).CashFlow(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	assert.InDelta(t, 0, report.BeginningBalance, 1e-9)
	assert.InDelta(t, 500, report.CashInflow, 1e-9)
	assert.InDelta(t, 200, report.CashOutflow, 1e-9)
	assert.InDelta(t, 300, report.NetChange, 1e-9)
	assert.InDelta(t, 300, report.EndingBalance, 1e-9)
}

type fixedBalances struct {
	tb   reports.TrialBalance
	asOf time.Time
}

func (f *fixedBalances) TrialBalance(_ context.Context, asOf time.Time) (reports.TrialBalance, error) {
	f.asOf = asOf
	return f.tb, nil
}

func TestCashFlowOpeningFromCashAccounts(t *testing.T) {
	cash := accounts.Account{ID: uuid.New(), Code: "1100", Type: accounts.AccountTypeAsset}
	bank := accounts.Account{ID: uuid.New(), Code: "1200", Type: accounts.AccountTypeAsset}
	stock := accounts.Account{ID: uuid.New(), Code: "1300", Type: accounts.AccountTypeAsset}
	balances := &fixedBalances{tb: reports.TrialBalance{Balances: map[uuid.UUID]reports.AccountBalance{
		cash.ID:  {Account: cash, Balance: 700},
		bank.ID:  {Account: bank, Balance: 300},
		stock.ID: {Account: stock, Balance: 5000},
	}}}
	src := &fakeSources{sales: []Sale{{ID: uuid.New(), TotalAmount: 500, PaymentType: PaymentCash, CreatedAt: day(3)}}}

	engine := newEngine(src).WithOpening(CashAccountOpening{Balances: balances, Codes: []string{"1100", " 1200"}})
	report, err := engine.CashFlow(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	assert.InDelta(t, 1000, report.BeginningBalance, 1e-9)
	assert.InDelta(t, 1500, report.EndingBalance, 1e-9)
	assert.True(t, balances.asOf.Before(marchStart))
}

func TestBranchFinancials(t *testing.T) {
	north := Branch{ID: uuid.New(), Name: "North"}
	south := Branch{ID: uuid.New(), Name: "South"}
	p := Product{ID: uuid.New(), Name: "P", CostPrice: 2}
	src := &fakeSources{
		branches: []Branch{north, south},
		products: []Product{p},
		sales: []Sale{
			{ID: uuid.New(), BranchID: north.ID, TotalAmount: 400, PaymentType: PaymentCash, CreatedAt: day(6)},
		},
		expenses: []Expense{
			{ID: uuid.New(), BranchID: north.ID, Amount: 100, Date: day(7)},
			{ID: uuid.New(), BranchID: north.ID, Amount: 1000, Date: time.Date(2023, time.March, 7, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), BranchID: south.ID, Amount: 50, Date: day(8)},
		},
		stock: []BranchStock{
			{BranchID: north.ID, ProductID: p.ID, Quantity: 10},
			{BranchID: south.ID, ProductID: uuid.New(), Quantity: 99},
		},
	}

	report, err := newEngine(src).WithConcurrency(1).BranchFinancials(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	require.Len(t, report.Branches, 2)

	n := report.Branches[0]
	assert.Equal(t, "North", n.BranchName)
	assert.InDelta(t, 400, n.Sales, 1e-9)
	assert.InDelta(t, 100, n.Expenses, 1e-9)
	assert.InDelta(t, 300, n.NetIncome, 1e-9)
	assert.InDelta(t, 75, n.ProfitMargin, 1e-9)
	assert.InDelta(t, 20, n.InventoryValue, 1e-9)

	s := report.Branches[1]
	assert.Equal(t, "South", s.BranchName)
	assert.InDelta(t, -50, s.NetIncome, 1e-9)
	assert.Zero(t, s.ProfitMargin)
	assert.Zero(t, s.InventoryValue)
}

func TestInventoryTurnover(t *testing.T) {
	moving := Product{ID: uuid.New(), Name: "Moving", CostPrice: 5, Category: "A"}
	idle := Product{ID: uuid.New(), Name: "Idle", CostPrice: 5, Category: "B"}
	empty := Product{ID: uuid.New(), Name: "Empty", CostPrice: 5, Category: "B"}
	src := &fakeSources{
		products: []Product{moving, idle, empty},
		stock: []BranchStock{
			{BranchID: uuid.New(), ProductID: moving.ID, Quantity: 10},
			{BranchID: uuid.New(), ProductID: moving.ID, Quantity: 30},
			{BranchID: uuid.New(), ProductID: idle.ID, Quantity: 8},
		},
		sales: []Sale{{ID: uuid.New(), CreatedAt: day(9), Items: []SaleItem{
			{ProductID: moving.ID, Quantity: 20, Price: 9},
			{ProductID: empty.ID, Quantity: 3, Price: 9},
		}}},
	}

	report, err := newEngine(src).InventoryTurnover(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	require.Len(t, report.Products, 3)

	m := report.Products[0]
	assert.Equal(t, "Moving", m.ProductName)
	assert.InDelta(t, 20, m.AverageInventory, 1e-9)
	assert.InDelta(t, 100, m.CostOfGoodsSold, 1e-9)
	assert.InDelta(t, 5, m.TurnoverRatio, 1e-9)
	assert.InDelta(t, 73, m.DaysToSell, 1e-9)

	i := report.Products[1]
	assert.InDelta(t, 8, i.AverageInventory, 1e-9)
	assert.Zero(t, i.TurnoverRatio)
	assert.Zero(t, i.DaysToSell)

	e := report.Products[2]
	assert.Zero(t, e.AverageInventory)
	assert.InDelta(t, 15, e.CostOfGoodsSold, 1e-9)
	assert.Zero(t, e.TurnoverRatio)
	assert.Zero(t, e.DaysToSell)
}

func TestProfitAndLossUsesPostedExpenses(t *testing.T) {
	cash := accounts.Account{ID: uuid.New(), Code: "1100", Name: "Cash", Type: accounts.AccountTypeAsset}
	rent := accounts.Account{ID: uuid.New(), Code: "6100", Name: "Rent", Type: accounts.AccountTypeExpense}
	power := accounts.Account{ID: uuid.New(), Code: "6200", Name: "Electricity", Type: accounts.AccountTypeExpense}
	entry := func(d time.Time, acc accounts.Account, amount float64) journals.JournalEntry {
		return journals.JournalEntry{ID: uuid.New(), Date: d, Lines: []journals.JournalLine{
			{AccountID: acc.ID, Debit: amount},
			{AccountID: cash.ID, Credit: amount},
		}}
	}
	src := &fakeSources{
		chart: []accounts.Account{cash, rent, power},
		sales: []Sale{{ID: uuid.New(), TotalAmount: 1000, PaymentType: PaymentCash, CreatedAt: day(1)}},
		entries: []journals.JournalEntry{
			entry(day(5), rent, 300),
			entry(day(6), power, 50),
			entry(day(7), rent, 100),
			entry(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), rent, 999),
		},
	}

	report, err := newEngine(src).ProfitAndLoss(context.Background(), marchStart, marchEnd)
	require.NoError(t, err)
	assert.InDelta(t, 1000, report.Revenue, 1e-9)
	assert.InDelta(t, 450, report.Expenses, 1e-9)
	assert.InDelta(t, 550, report.NetIncome, 1e-9)
	assert.Equal(t, []ExpenseLine{{Category: "Electricity", Amount: 50}, {Category: "Rent", Amount: 400}}, report.ByCategory)
}

func TestCollaboratorFailureAbortsReport(t *testing.T) {
	base := func() *fakeSources {
		return &fakeSources{
			products: []Product{{ID: uuid.New(), Name: "P"}},
			branches: []Branch{{ID: uuid.New(), Name: "B"}},
		}
	}
	ctx := context.Background()
	cases := map[string]struct {
		breakIt func(*fakeSources)
		run     func(*Engine) (any, error)
	}{
		"sales products": {
			breakIt: func(f *fakeSources) { f.failProducts = true },
			run:     func(e *Engine) (any, error) { return e.SalesReport(ctx, marchStart, marchEnd) },
		},
		"inventory": {
			breakIt: func(f *fakeSources) { f.failInventory = true },
			run:     func(e *Engine) (any, error) { return e.InventoryReport(ctx) },
		},
		"pl entries": {
			breakIt: func(f *fakeSources) { f.failEntries = true },
			run:     func(e *Engine) (any, error) { return e.ProfitAndLoss(ctx, marchStart, marchEnd) },
		},
		"pl sales": {
			breakIt: func(f *fakeSources) { f.failSales = true },
			run:     func(e *Engine) (any, error) { return e.ProfitAndLoss(ctx, marchStart, marchEnd) },
		},
		"cashflow expenses": {
			breakIt: func(f *fakeSources) { f.failExpenses = true },
			run:     func(e *Engine) (any, error) { return e.CashFlow(ctx, marchStart, marchEnd) },
		},
		"branches": {
			breakIt: func(f *fakeSources) { f.failBranches = true },
			run:     func(e *Engine) (any, error) { return e.BranchFinancials(ctx, marchStart, marchEnd) },
		},
		"branch stock": {
			breakIt: func(f *fakeSources) { f.failStock = true },
			run:     func(e *Engine) (any, error) { return e.BranchFinancials(ctx, marchStart, marchEnd) },
		},
		"turnover stock": {
			breakIt: func(f *fakeSources) { f.failStock = true },
			run:     func(e *Engine) (any, error) { return e.InventoryTurnover(ctx, marchStart, marchEnd) },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			src := base()
			tc.breakIt(src)
			_, err := tc.run(newEngine(src))
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrDataSource)
			assert.ErrorIs(t, err, errBoom)
		})
	}
}

func TestFetchFailedWrapsClassifiedErrors(t *testing.T) {
	err := fetchFailed("list products", shared.NotFound("product", "x"))
	assert.ErrorIs(t, err, shared.ErrDataSource)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, fetchFailed("noop", nil))
}

func TestExpensesByCategoryKeepsFirstSeenOrder(t *testing.T) {
	north, south := uuid.New(), uuid.New()
	src := &fakeSources{expenses: []Expense{
		{ID: uuid.New(), BranchID: north, Category: "rent", Amount: 1000, Date: day(1)},
		{ID: uuid.New(), BranchID: south, Category: "utilities", Amount: 150, Date: day(2)},
		{ID: uuid.New(), BranchID: north, Category: "payroll", Amount: 2500, Date: day(5)},
		{ID: uuid.New(), BranchID: south, Category: "rent", Amount: 800, Date: day(9)},
		{ID: uuid.New(), BranchID: north, Category: "marketing", Amount: 75, Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}}
	engine := newEngine(src)
	ctx := context.Background()

	report, err := engine.ExpensesByCategory(ctx, nil, marchStart, marchEnd)
	require.NoError(t, err)
	assert.Equal(t, []ExpenseLine{
		{Category: "rent", Amount: 1800},
		{Category: "utilities", Amount: 150},
		{Category: "payroll", Amount: 2500},
	}, report.ByCategory)
	assert.InDelta(t, 4450, report.Total, 1e-9)
	assert.Nil(t, report.BranchID)

	report, err = engine.ExpensesByCategory(ctx, &south, marchStart, marchEnd)
	require.NoError(t, err)
	assert.Equal(t, []ExpenseLine{
		{Category: "utilities", Amount: 150},
		{Category: "rent", Amount: 800},
	}, report.ByCategory)
	assert.InDelta(t, 950, report.Total, 1e-9)
	require.NotNil(t, report.BranchID)
	assert.Equal(t, south, *report.BranchID)
}

func TestExpensesByCategoryEmptyWindow(t *testing.T) {
	report, err := newEngine(&fakeSources{}).ExpensesByCategory(context.Background(), nil, marchStart, marchEnd)
	require.NoError(t, err)
	assert.Empty(t, report.ByCategory)
	assert.NotNil(t, report.ByCategory)
	assert.Zero(t, report.Total)
}

func TestExpensesByCategoryErrors(t *testing.T) {
	_, err := newEngine(&fakeSources{failExpenses: true}).ExpensesByCategory(context.Background(), nil, marchStart, marchEnd)
	assert.ErrorIs(t, err, shared.ErrDataSource)

	_, err = newEngine(&fakeSources{}).ExpensesByCategory(context.Background(), nil, marchEnd, marchStart)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
