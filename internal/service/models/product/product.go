package product

import "github.com/shopspring/decimal"

// Product is a catalog record as served by the product service. Once copied
// into a cart item it is treated as an immutable snapshot: later catalog edits
// never reach carts or orders.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Hint        string          `json:"hint,omitempty"`
}
