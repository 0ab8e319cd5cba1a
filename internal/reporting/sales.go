package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TopProductLimit caps the top products breakdown.
const TopProductLimit = 10

// ProductSales accumulates one product's sold quantity and revenue.
type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Revenue     float64   `json:"revenue"`
}

// SalesReport aggregates sales in a window.
type SalesReport struct {
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	TotalSales    float64            `json:"total_sales"`
	Transactions  int                `json:"transactions"`
	ByPaymentType map[string]float64 `json:"by_payment_type"`
	ByDate        map[string]float64 `json:"by_date"`
	TopProducts   []ProductSales     `json:"top_products"`
}

// SalesReport totals sales between start and end inclusive, broken down by
// payment type, UTC calendar date and top products by revenue.
func (e *Engine) SalesReport(ctx context.Context, start, end time.Time) (SalesReport, error) {
	rng, err := window(start, end)
	if err != nil {
		return SalesReport{}, err
	}
	sales, err := e.src.Sales.ListSales(ctx, rng, nil)
	if err != nil {
		return SalesReport{}, fetchFailed("list sales", err)
	}
	products, err := e.src.Products.ListProducts(ctx)
	if err != nil {
		return SalesReport{}, fetchFailed("list products", err)
	}
	report := summariseSales(sales, indexProducts(products))
	report.Start, report.End = start, end
	return report, nil
}

func summariseSales(sales []Sale, products productIndex) SalesReport {
	report := SalesReport{
		ByPaymentType: make(map[string]float64),
		ByDate:        make(map[string]float64),
		TopProducts:   []ProductSales{},
	}
	positions := make(map[uuid.UUID]int)
	var tally []ProductSales
	for _, sale := range sales {
		report.TotalSales += sale.TotalAmount
		report.Transactions++
		report.ByPaymentType[sale.PaymentType] += sale.TotalAmount
		report.ByDate[sale.CreatedAt.UTC().Format("2006-01-02")] += sale.TotalAmount
		for _, item := range sale.Items {
			pos, ok := positions[item.ProductID]
			if !ok {
				pos = len(tally)
				positions[item.ProductID] = pos
				tally = append(tally, ProductSales{ProductID: item.ProductID, ProductName: products.name(item.ProductID)})
			}
			tally[pos].Quantity += item.Quantity
			tally[pos].Revenue += float64(item.Quantity) * item.Price
		}
	}
	sort.SliceStable(tally, func(i, j int) bool { return tally[i].Revenue > tally[j].Revenue })
	if len(tally) > TopProductLimit {
		tally = tally[:TopProductLimit]
	}
	if tally != nil {
		report.TopProducts = tally
	}
	return report
}
