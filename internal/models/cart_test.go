package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVariant(t *testing.T, ean, name, price string) SimpleProduct {
	t.Helper()
	parent, err := NewConfigurableProduct(ean, name)
	require.NoError(t, err)
	variant, err := InstantiateVariant(parent, ConditionNew, decimal.RequireFromString(price))
	require.NoError(t, err)
	return variant
}

func TestAddItemMergesLines(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")

	cart := Cart{}.AddItem(ps5).AddItem(ps5)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestAddItemPreservesLineOrder(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")
	xbox := testVariant(t, "0196388098514", "Xbox Series X", "499.99")

	cart := Cart{}.AddItem(ps5).AddItem(xbox).AddItem(ps5)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, ps5.ID, cart.Lines[0].Product.ID)
	assert.Equal(t, xbox.ID, cart.Lines[1].Product.ID)
}

func TestAdjustQuantityClampsAtOne(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")

	cart := Cart{}.AddItem(ps5).AdjustQuantity(ps5.ID, -100)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")
	xbox := testVariant(t, "0196388098514", "Xbox Series X", "499.99")

	cart := Cart{}.AddItem(ps5).AddItem(xbox).RemoveItem(ps5.ID)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, xbox.ID, cart.Lines[0].Product.ID)

	// Removing something absent is a no-op.
	cart = cart.RemoveItem("unknown")
	assert.Len(t, cart.Lines, 1)
}

func TestCartTotal(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")
	xbox := testVariant(t, "0196388098514", "Xbox Series X", "499.99")

	cart := Cart{}.AddItem(ps5).AddItem(ps5).AddItem(xbox)

	assert.True(t, cart.Total().Equal(decimal.RequireFromString("1499.97")),
		"expected 1499.97, got %s", cart.Total())
}

func TestCartValueSemantics(t *testing.T) {
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")

	original := Cart{}.AddItem(ps5)
	modified := original.AdjustQuantity(ps5.ID, 5)

	assert.Equal(t, 1, original.Lines[0].Quantity)
	assert.Equal(t, 6, modified.Lines[0].Quantity)
}

func TestEmptyCartIsValid(t *testing.T) {
	cart := Cart{}
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total().IsZero())
}
