package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoplabs/shopcore/internal/service/models/product"
)

// Item is a product snapshot plus purchase quantity. Items are unique by
// product id within a cart.
type Item struct {
	product.Product

	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Cart holds a user's items and totals derived from them. Carts are created
// lazily on first access and live for the process lifetime.
type Cart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Summary is the condensed view served by the summary endpoint. ItemCount is
// the number of distinct lines, not the quantity sum.
type Summary struct {
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

// Recalculate rebuilds both totals from the items. The amount is rounded to
// cents once over the full sum, never per line, so line-level rounding error
// cannot compound.
func (c *Cart) Recalculate() {
	sum := decimal.Zero
	count := 0
	for _, item := range c.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	c.TotalAmount = sum.Round(2)
	c.TotalItems = count
}

// ItemIndex returns the position of the line for productID, or -1.
func (c *Cart) ItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Summary derives the condensed totals view.
func (c *Cart) Summary() Summary {
	return Summary{
		TotalItems:  c.TotalItems,
		TotalAmount: c.TotalAmount,
		ItemCount:   len(c.Items),
	}
}

// Clone returns a deep copy so store snapshots cannot be mutated through
// aliased item slices.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
