package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lamp   = SellableItem{ID: "item-1", Title: "Vintage Lamp", Price: 10.00, Barcode: "CNS-001"}
	teapot = SellableItem{ID: "item-3", Title: "Teapot", Price: 12.50, Barcode: "CNS-003"}
)

// checkTotal asserts the cart total equals the sum over lines of
// quantity times unit price.
func checkTotal(t *testing.T, c *Cart) {
	t.Helper()
	sum := 0.0
	for _, line := range c.Lines {
		assert.Equal(t, float64(line.Quantity)*line.Item.Price, line.LineTotal)
		sum += line.LineTotal
	}
	assert.Equal(t, sum, c.Total)
}

func TestAddItem_NewLine(t *testing.T) {
	c := NewCart("cart-1")

	c.AddItem(lamp)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, 10.00, c.Lines[0].LineTotal)
	checkTotal(t, c)
}

func TestAddItem_RescanMergesIntoOneLine(t *testing.T) {
	c := NewCart("cart-1")

	c.AddItem(lamp)
	c.AddItem(lamp)

	require.Len(t, c.Lines, 1, "no duplicate item ids in a cart")
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 20.00, c.Lines[0].LineTotal)
	assert.Equal(t, 20.00, c.Total)
	checkTotal(t, c)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	c := NewCart("cart-1")

	c.AddItem(lamp)
	c.AddItem(teapot)
	c.AddItem(lamp)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "item-1", c.Lines[0].Item.ID)
	assert.Equal(t, "item-3", c.Lines[1].Item.ID)
	checkTotal(t, c)
}

func TestAppendLine_SkipsExistingItem(t *testing.T) {
	c := NewCart("cart-1")
	c.AddItem(lamp)

	assert.False(t, c.AppendLine(lamp, 5), "existing line is left untouched")
	assert.True(t, c.AppendLine(teapot, 2))

	require.Len(t, c.Lines, 2)
	line, ok := c.Line("item-1")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 10.00+2*12.50, c.Total)
	checkTotal(t, c)
}

func TestSetQuantity(t *testing.T) {
	c := NewCart("cart-1")
	c.AddItem(lamp)
	c.AddItem(teapot)

	require.True(t, c.SetQuantity("item-1", 4))
	assert.Equal(t, 4*10.00+12.50, c.Total)
	checkTotal(t, c)

	// n <= 0 is removal
	require.True(t, c.SetQuantity("item-3", 0))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 40.00, c.Total)
	checkTotal(t, c)

	assert.False(t, c.SetQuantity("item-999", 2))
}

func TestRemoveLine(t *testing.T) {
	c := NewCart("cart-1")
	c.AddItem(lamp)
	c.AddItem(teapot)

	require.True(t, c.RemoveLine("item-1"))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "item-3", c.Lines[0].Item.ID)
	checkTotal(t, c)

	assert.False(t, c.RemoveLine("item-1"))

	require.True(t, c.RemoveLine("item-3"))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0.0, c.Total)
}

func TestSnapshot_IsDetached(t *testing.T) {
	c := NewCart("cart-1")
	c.AddItem(lamp)

	snap := c.Snapshot()
	c.AddItem(lamp)
	c.AddItem(teapot)

	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
	assert.Equal(t, 10.00, snap.Total)
}
