package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shoplabs/shopcore/internal/service/models/product"
)

func item(id string, price string, qty int) Item {
	return Item{
		Product: product.Product{
			ID:    id,
			Name:  "product " + id,
			Price: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func TestRecalculate_SumsAndRoundsOnce(t *testing.T) {
	c := &Cart{Items: []Item{item("p1", "10.99", 3)}}

	c.Recalculate()

	assert.Equal(t, "32.97", c.TotalAmount.StringFixed(2))
	assert.Equal(t, 3, c.TotalItems)
}

func TestRecalculate_RoundingOverFullSum(t *testing.T) {
	// Per-line rounding would give 0.33 + 0.33 = 0.66; the correct
	// whole-sum rounding gives 0.67.
	c := &Cart{Items: []Item{
		item("p1", "0.333", 1),
		item("p2", "0.333", 1),
	}}

	c.Recalculate()

	assert.Equal(t, "0.67", c.TotalAmount.StringFixed(2))
	assert.Equal(t, 2, c.TotalItems)
}

func TestRecalculate_EmptyCartZeroes(t *testing.T) {
	c := &Cart{Items: []Item{item("p1", "5.00", 2)}}
	c.Recalculate()

	c.Items = []Item{}
	c.Recalculate()

	assert.True(t, c.TotalAmount.IsZero())
	assert.Equal(t, 0, c.TotalItems)
}

func TestSummary_ItemCountIsDistinctLines(t *testing.T) {
	c := &Cart{Items: []Item{
		item("p1", "10.00", 2),
		item("p2", "5.50", 1),
	}}
	c.Recalculate()

	s := c.Summary()

	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, "25.50", s.TotalAmount.StringFixed(2))
}

func TestItemIndex(t *testing.T) {
	c := &Cart{Items: []Item{item("p1", "1.00", 1), item("p2", "2.00", 1)}}

	assert.Equal(t, 0, c.ItemIndex("p1"))
	assert.Equal(t, 1, c.ItemIndex("p2"))
	assert.Equal(t, -1, c.ItemIndex("p3"))
}

func TestClone_DetachesItems(t *testing.T) {
	c := &Cart{Items: []Item{item("p1", "1.00", 1)}}

	cp := c.Clone()
	cp.Items[0].Quantity = 99

	assert.Equal(t, 1, c.Items[0].Quantity)
}
