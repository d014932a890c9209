package cart

import (
	"github.com/shopspring/decimal"
)

// Totals is derived from a set of line items and never stored.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// ComputeTotals aggregates items in a single pass. The discount price is
// trusted as given; catalog writes reject discounts that are not below price.
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	count := 0

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		original := item.Price.Mul(qty)
		charged := item.EffectivePrice().Mul(qty)

		subtotal = subtotal.Add(original)
		discount = discount.Add(original.Sub(charged))
		count += item.Quantity
	}

	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     subtotal.Sub(discount),
		ItemCount: count,
	}
}

// CountItems sums quantities across line items.
func CountItems(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// QuantityOf returns the quantity held for productID, or 0.
func QuantityOf(items []LineItem, productID string) int {
	if i := indexOf(items, productID); i >= 0 {
		return items[i].Quantity
	}
	return 0
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
