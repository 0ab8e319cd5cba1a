package reporting

import (
	"context"

	"github.com/google/uuid"
)

// LowStockItem is an inventory line at or below its reorder threshold.
type LowStockItem struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	CurrentQuantity int       `json:"current_quantity"`
	LowStockAt      int       `json:"low_stock_at"`
}

// CategoryValue is stock value for one product category.
type CategoryValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// InventoryReport values stock at cost.
type InventoryReport struct {
	TotalValue float64         `json:"total_value"`
	LowStock   []LowStockItem  `json:"low_stock"`
	ByCategory []CategoryValue `json:"by_category"`
}

// InventoryReport prices every inventory line whose product is known.
// Lines for unknown products are left out entirely.
func (e *Engine) InventoryReport(ctx context.Context) (InventoryReport, error) {
	items, err := e.src.Inventory.ListAll(ctx)
	if err != nil {
		return InventoryReport{}, fetchFailed("list inventory", err)
	}
	products, err := e.src.Products.ListProducts(ctx)
	if err != nil {
		return InventoryReport{}, fetchFailed("list products", err)
	}
	return valueInventory(items, indexProducts(products)), nil
}

func valueInventory(items []InventoryItem, products productIndex) InventoryReport {
	report := InventoryReport{LowStock: []LowStockItem{}, ByCategory: []CategoryValue{}}
	positions := make(map[string]int)
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		value := float64(item.Quantity) * product.CostPrice
		report.TotalValue += value
		if item.Quantity <= item.LowStockAt {
			report.LowStock = append(report.LowStock, LowStockItem{
				ProductID:       item.ProductID,
				ProductName:     product.Name,
				CurrentQuantity: item.Quantity,
				LowStockAt:      item.LowStockAt,
			})
		}
		pos, seen := positions[product.Category]
		if !seen {
			pos = len(report.ByCategory)
			positions[product.Category] = pos
			report.ByCategory = append(report.ByCategory, CategoryValue{Category: product.Category})
		}
		report.ByCategory[pos].Value += value
	}
	return report
}
