package domain

import "time"

type CartLine struct {
	Item      SellableItem `json:"item"`
	Quantity  int          `json:"quantity"`
	LineTotal float64      `json:"line_total"`
}

// Cart is the in-progress sale. Lines keep insertion order and hold at most
// one entry per item id.
type Cart struct {
	ID        string     `json:"id"`
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(id string) *Cart {
	now := time.Now()
	return &Cart{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges one scanned unit into the cart: an existing line for the
// same item id gets its quantity bumped, otherwise a new line is appended
// with quantity 1.
func (c *Cart) AddItem(item SellableItem) {
	for i := range c.Lines {
		if c.Lines[i].Item.ID == item.ID {
			c.Lines[i].Quantity++
			c.recompute()
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{Item: item, Quantity: 1})
	c.recompute()
}

// AppendLine adds a line with an explicit quantity if no line for the item
// exists yet. Returns false when the item is already present; the existing
// line is left untouched, which keeps remote merges idempotent.
func (c *Cart) AppendLine(item SellableItem, quantity int) bool {
	if quantity < 1 {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].Item.ID == item.ID {
			return false
		}
	}
	c.Lines = append(c.Lines, CartLine{Item: item, Quantity: quantity})
	c.recompute()
	return true
}

func (c *Cart) RemoveLine(itemID string) bool {
	for i, line := range c.Lines {
		if line.Item.ID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.recompute()
			return true
		}
	}
	return false
}

// SetQuantity updates a line's quantity; n <= 0 removes the line.
func (c *Cart) SetQuantity(itemID string, n int) bool {
	if n <= 0 {
		return c.RemoveLine(itemID)
	}
	for i := range c.Lines {
		if c.Lines[i].Item.ID == itemID {
			c.Lines[i].Quantity = n
			c.recompute()
			return true
		}
	}
	return false
}

func (c *Cart) Line(itemID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.Item.ID == itemID {
			return line, true
		}
	}
	return CartLine{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Snapshot returns a deep copy safe to hand to settlement while the
// original cart keeps receiving scan events.
func (c *Cart) Snapshot() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}

func (c *Cart) recompute() {
	total := 0.0
	for i := range c.Lines {
		c.Lines[i].LineTotal = float64(c.Lines[i].Quantity) * c.Lines[i].Item.Price
		total += c.Lines[i].LineTotal
	}
	c.Total = total
	c.UpdatedAt = time.Now()
}
