// Package cart holds the shopping cart state: line items with merge-on-add
// semantics, quantity clamping, derived totals and best-effort persistence.
package cart

import (
	"github.com/shopspring/decimal"
)

const (
	// MinQuantity and MaxQuantity bound every stored line item quantity.
	MinQuantity = 1
	MaxQuantity = 99

	// DefaultQuantity is what callers add when the user did not pick a quantity.
	DefaultQuantity = 1
)

// Item is a product snapshot taken at add time, without a quantity.
type Item struct {
	ProductID     string              `json:"productId"`
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Thumbnail     string              `json:"thumbnail"`
}

// LineItem is one distinct product held in the cart.
type LineItem struct {
	Item
	Quantity int `json:"quantity"`
}

// EffectivePrice is the unit price actually charged: the discount price when
// present, otherwise the listed price.
func (i Item) EffectivePrice() decimal.Decimal {
	if i.DiscountPrice.Valid {
		return i.DiscountPrice.Decimal
	}
	return i.Price
}

func clampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
