package reporting

import (
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
)

const unknownProduct = "Unknown Product"

type productIndex map[uuid.UUID]Product

func indexProducts(products []Product) productIndex {
	idx := make(productIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

func (idx productIndex) name(id uuid.UUID) string {
	if p, ok := idx[id]; ok {
		return p.Name
	}
	return unknownProduct
}

// stockValue prices quantities at cost; lines for unknown products count zero.
func (idx productIndex) stockValue(stock []BranchStock) float64 {
	var total float64
	for _, s := range stock {
		if p, ok := idx[s.ProductID]; ok {
			total += float64(s.Quantity) * p.CostPrice
		}
	}
	return total
}

func indexAccounts(chart []accounts.Account) map[uuid.UUID]accounts.Account {
	idx := make(map[uuid.UUID]accounts.Account, len(chart))
	for _, acc := range chart {
		idx[acc.ID] = acc
	}
	return idx
}
