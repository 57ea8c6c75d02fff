package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ItemID    int64 // remote cart item id, zero until the cart service confirms the line
	Product   Product
	Color     string
	Size      Size
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l CartLine) Key() LineKey {
	return NewLineKey(l.Product.ID, l.Color, l.Size)
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session-held staging area an order is built from.
type Cart struct {
	lines LineSet[CartLine]
}

func NewCart() *Cart {
	return &Cart{}
}

// RestoreCart rebuilds a cart from stored lines. Lines sharing a key are
// merged so the one-line-per-key invariant survives bad input.
func RestoreCart(lines []CartLine) *Cart {
	c := NewCart()
	for _, l := range lines {
		l.Color = normalizeColor(l.Color)
		if existing, ok := c.lines.Get(l.Key()); ok {
			existing.Quantity += l.Quantity
			c.lines.Put(existing)
			continue
		}
		c.lines.Put(l)
	}
	return c
}

// AddLine adds quantity of the product variant, merging with an existing line.
func (c *Cart) AddLine(product Product, color string, size Size, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if product.Price.IsNegative() {
		return ErrInvalidPrice
	}
	key := NewLineKey(product.ID, color, size)
	if err := key.Validate(); err != nil {
		return err
	}

	if existing, ok := c.lines.Get(key); ok {
		existing.Quantity += quantity
		c.lines.Put(existing)
		return nil
	}

	c.lines.Put(CartLine{
		Product:   product,
		Color:     key.Color,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: product.Price,
	})
	return nil
}

// PutLine stores line as confirmed by the cart service.
func (c *Cart) PutLine(line CartLine) error {
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	line.Color = normalizeColor(line.Color)
	if err := line.Key().Validate(); err != nil {
		return err
	}
	c.lines.Put(line)
	return nil
}

func (c *Cart) RemoveLine(key LineKey) {
	c.lines.Delete(NewLineKey(key.ProductID, key.Color, key.Size))
}

func (c *Cart) UpdateQuantity(key LineKey, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	line, ok := c.lines.Get(NewLineKey(key.ProductID, key.Color, key.Size))
	if !ok {
		return ErrLineNotFound
	}
	line.Quantity = quantity
	c.lines.Put(line)
	return nil
}

func (c *Cart) Line(key LineKey) (CartLine, bool) {
	return c.lines.Get(NewLineKey(key.ProductID, key.Color, key.Size))
}

func (c *Cart) Lines() []CartLine {
	return c.lines.All()
}

func (c *Cart) Len() int {
	return c.lines.Len()
}

func (c *Cart) IsEmpty() bool {
	return c == nil || c.lines.Len() == 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines.All() {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Clear() {
	c.lines.Reset()
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	return RestoreCart(c.Lines())
}

func (c *Cart) Snapshot(now time.Time) CartSnapshot {
	return CartSnapshot{
		Lines:      c.Lines(),
		Total:      c.Total(),
		CapturedAt: now,
	}
}

// CartSnapshot is a copy of the cart taken at checkout time. Edits to the
// live cart after the snapshot do not reach it.
type CartSnapshot struct {
	Lines      []CartLine
	Total      decimal.Decimal
	CapturedAt time.Time
}
