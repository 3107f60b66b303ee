package models

import (
	"github.com/shopspring/decimal"
)

// CartLine pairs a sellable variant with a quantity of at least 1.
type CartLine struct {
	Product  SimpleProduct `json:"product"`
	Quantity int           `json:"quantity"`
}

// Cart is the in-progress sale. All operations are value-semantic: they
// return a new cart and leave the receiver untouched, so a settled
// transaction's line snapshot can never be mutated behind its back.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// AddItem increments the quantity of an existing line for the same product
// id, or appends a new line with quantity 1. Line order is preserved.
func (c Cart) AddItem(p SimpleProduct) Cart {
	next := c.clone()
	for i := range next.Lines {
		if next.Lines[i].Product.ID == p.ID {
			next.Lines[i].Quantity++
			return next
		}
	}
	next.Lines = append(next.Lines, CartLine{Product: p, Quantity: 1})
	return next
}

// AdjustQuantity adds delta to the matching line's quantity, clamped at 1.
// Removing a line is a separate, explicit operation.
func (c Cart) AdjustQuantity(productID string, delta int) Cart {
	next := c.clone()
	for i := range next.Lines {
		if next.Lines[i].Product.ID == productID {
			q := next.Lines[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			next.Lines[i].Quantity = q
			break
		}
	}
	return next
}

// RemoveItem drops the matching line entirely. No-op if absent.
func (c Cart) RemoveItem(productID string) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.Product.ID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

// Total sums price × quantity over all lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// IsEmpty reports an empty cart. An empty cart is a valid state, just not a
// settleable one.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
