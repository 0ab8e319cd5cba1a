package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DaysPerYear converts a turnover ratio into days to sell.
const DaysPerYear = 365

// ProductTurnover describes how fast one product's stock moves.
type ProductTurnover struct {
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Category         string    `json:"category"`
	AverageInventory float64   `json:"average_inventory"`
	CostOfGoodsSold  float64   `json:"cost_of_goods_sold"`
	TurnoverRatio    float64   `json:"turnover_ratio"`
	DaysToSell       float64   `json:"days_to_sell"`
}

// InventoryTurnoverReport lists every product in catalogue order.
type InventoryTurnoverReport struct {
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Products []ProductTurnover `json:"products"`
}

// InventoryTurnover relates each product's cost of goods sold in the window
// to its average stock across the branches holding it.
func (e *Engine) InventoryTurnover(ctx context.Context, start, end time.Time) (InventoryTurnoverReport, error) {
	rng, err := window(start, end)
	if err != nil {
		return InventoryTurnoverReport{}, err
	}
	products, err := e.src.Products.ListProducts(ctx)
	if err != nil {
		return InventoryTurnoverReport{}, fetchFailed("list products", err)
	}
	sales, err := e.src.Sales.ListSales(ctx, rng, nil)
	if err != nil {
		return InventoryTurnoverReport{}, fetchFailed("list sales", err)
	}
	sold := unitsSold(sales)

	results := make([]ProductTurnover, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, product := range products {
		g.Go(func() error {
			stock, err := e.src.Inventory.ListByProduct(gctx, product.ID)
			if err != nil {
				return fetchFailed("list product inventory", err)
			}
			results[i] = turnover(product, stock, sold[product.ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return InventoryTurnoverReport{}, err
	}
	return InventoryTurnoverReport{Start: start, End: end, Products: results}, nil
}

func unitsSold(sales []Sale) map[uuid.UUID]int {
	sold := make(map[uuid.UUID]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			sold[item.ProductID] += item.Quantity
		}
	}
	return sold
}

func turnover(product Product, stock []BranchStock, units int) ProductTurnover {
	var total int
	for _, s := range stock {
		total += s.Quantity
	}
	holders := len(stock)
	if holders == 0 {
		holders = 1
	}
	row := ProductTurnover{
		ProductID:        product.ID,
		ProductName:      product.Name,
		Category:         product.Category,
		AverageInventory: float64(total) / float64(holders),
		CostOfGoodsSold:  float64(units) * product.CostPrice,
	}
	if row.AverageInventory > 0 {
		row.TurnoverRatio = row.CostOfGoodsSold / row.AverageInventory
	}
	if row.TurnoverRatio > 0 {
		row.DaysToSell = DaysPerYear / row.TurnoverRatio
	}
	return row
}
