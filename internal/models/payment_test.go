package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func splitCart(t *testing.T) Cart {
	t.Helper()
	ps5 := testVariant(t, "0711719346005", "PlayStation 5", "499.99")
	xbox := testVariant(t, "0196388098514", "Xbox Series X", "499.99")
	return Cart{}.AddItem(ps5).AddItem(ps5).AddItem(xbox)
}

func TestSplitPaymentSettlesExactly(t *testing.T) {
	cart := splitCart(t)
	total := cart.Total()
	require.True(t, total.Equal(dec(t, "1499.97")))

	payments, err := RecordPayment(nil, total, PaymentDetail{Method: MethodCash, Amount: dec(t, "999.97")})
	require.NoError(t, err)
	payments, err = RecordPayment(payments, total, PaymentDetail{Method: MethodCard, Amount: dec(t, "500.00")})
	require.NoError(t, err)

	assert.True(t, Remaining(total, payments).IsZero())

	transaction, err := Settle("tx-1", time.Now(), cart, payments, nil)
	require.NoError(t, err)
	assert.True(t, transaction.Total.Equal(total))
	assert.Equal(t, MethodMixed, transaction.PaymentMethod)
	assert.Len(t, transaction.Payments, 2)
}

func TestSinglePaymentKeepsItsMethod(t *testing.T) {
	cart := splitCart(t)
	payments, err := RecordPayment(nil, cart.Total(), PaymentDetail{Method: MethodCheck, Amount: cart.Total()})
	require.NoError(t, err)

	transaction, err := Settle("tx-2", time.Now(), cart, payments, nil)
	require.NoError(t, err)
	assert.Equal(t, MethodCheck, transaction.PaymentMethod)
}

func TestPartialPaymentBlocksSettlement(t *testing.T) {
	cart := splitCart(t)
	total := cart.Total()

	payments, err := RecordPayment(nil, total, PaymentDetail{Method: MethodCash, Amount: dec(t, "1000.00")})
	require.NoError(t, err)

	remaining := Remaining(total, payments)
	assert.True(t, remaining.Equal(dec(t, "499.97")), "expected 499.97 remaining, got %s", remaining)

	_, err = Settle("tx-3", time.Now(), cart, payments, nil)
	assert.ErrorIs(t, err, ErrUnderpayment)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	cart := splitCart(t)
	total := cart.Total()

	_, err := RecordPayment(nil, total, PaymentDetail{Method: MethodCash, Amount: dec(t, "1500.00")})
	assert.ErrorIs(t, err, ErrOverpayment)

	payments, err := RecordPayment(nil, total, PaymentDetail{Method: MethodCash, Amount: dec(t, "1499.97")})
	require.NoError(t, err)
	_, err = RecordPayment(payments, total, PaymentDetail{Method: MethodCard, Amount: dec(t, "0.01")})
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestRecordPaymentRejectsNonPositiveAmounts(t *testing.T) {
	cart := splitCart(t)

	_, err := RecordPayment(nil, cart.Total(), PaymentDetail{Method: MethodCash, Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = RecordPayment(nil, cart.Total(), PaymentDetail{Method: MethodCash, Amount: dec(t, "-5")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = RecordPayment(nil, cart.Total(), PaymentDetail{Method: PaymentMethod("iou"), Amount: dec(t, "5")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettleRejectsEmptyCart(t *testing.T) {
	_, err := Settle("tx-4", time.Now(), Cart{}, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettleSnapshotIsImmutable(t *testing.T) {
	cart := splitCart(t)
	payments, err := RecordPayment(nil, cart.Total(), PaymentDetail{Method: MethodCash, Amount: cart.Total()})
	require.NoError(t, err)

	transaction, err := Settle("tx-5", time.Now(), cart, payments, nil)
	require.NoError(t, err)

	cart = cart.AdjustQuantity(cart.Lines[0].Product.ID, 10)
	payments[0].Amount = decimal.Zero

	assert.Equal(t, 2, transaction.Lines[0].Quantity)
	assert.True(t, transaction.Payments[0].Amount.Equal(dec(t, "1499.97")))
}

func TestPurchaseTotalOrderInvariant(t *testing.T) {
	lines := []PurchaseLineItem{
		{Name: "PlayStation 4", Quantity: 1, PurchasePrice: dec(t, "120.50"), Condition: ConditionGood},
		{Name: "DualShock 4", Quantity: 3, PurchasePrice: dec(t, "15.25"), Condition: ConditionFair},
		{Name: "Game bundle", Quantity: 2, PurchasePrice: dec(t, "9.99"), Condition: ConditionPerfect},
	}
	reversed := []PurchaseLineItem{lines[2], lines[1], lines[0]}

	assert.True(t, PurchaseTotal(lines).Equal(PurchaseTotal(reversed)))
	assert.True(t, PurchaseTotal(lines).Equal(dec(t, "186.23")))
}

func validSeller() Seller {
	return Seller{
		FirstName:      "Paul",
		LastName:       "Morel",
		Address:        "3 rue des Lilas",
		PostalCode:     "69001",
		City:           "Lyon",
		Phone:          "06 11 22 33 44",
		DocumentType:   DocumentNationalID,
		DocumentNumber: "123456789",
	}
}

func TestNewPurchaseAllowsMissingIdentifiers(t *testing.T) {
	lines := []PurchaseLineItem{
		{Name: "Console sans étiquette", Quantity: 1, PurchasePrice: dec(t, "350"), Condition: ConditionGood},
	}

	purchase, err := NewPurchase("p-1", time.Now(), validSeller(), lines, MethodCash)
	require.NoError(t, err)
	assert.True(t, purchase.TotalAmount.Equal(dec(t, "350")))
	assert.Empty(t, purchase.Lines[0].EAN)
	assert.Empty(t, purchase.Lines[0].SerialNumber)
}

func TestNewPurchaseValidation(t *testing.T) {
	lines := []PurchaseLineItem{
		{Name: "Console", Quantity: 1, PurchasePrice: dec(t, "350"), Condition: ConditionGood},
	}

	seller := validSeller()
	seller.DocumentNumber = "  "
	_, err := NewPurchase("p-2", time.Now(), seller, lines, MethodCash)
	assert.ErrorIs(t, err, ErrValidation)

	seller = validSeller()
	seller.DocumentType = "Carte de bibliothèque"
	_, err = NewPurchase("p-3", time.Now(), seller, lines, MethodCash)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewPurchase("p-4", time.Now(), validSeller(), nil, MethodCash)
	assert.ErrorIs(t, err, ErrValidation)

	badQty := []PurchaseLineItem{
		{Name: "Console", Quantity: 0, PurchasePrice: dec(t, "350"), Condition: ConditionGood},
	}
	_, err = NewPurchase("p-5", time.Now(), validSeller(), badQty, MethodCash)
	assert.ErrorIs(t, err, ErrValidation)

	noName := []PurchaseLineItem{
		{Quantity: 1, PurchasePrice: dec(t, "350"), Condition: ConditionGood},
	}
	_, err = NewPurchase("p-6", time.Now(), validSeller(), noName, MethodCash)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCustomerMatches(t *testing.T) {
	customer := Customer{FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@email.com"}

	assert.True(t, customer.Matches("jean"))
	assert.True(t, customer.Matches("DUPONT"))
	assert.True(t, customer.Matches("jean dupont"))
	assert.True(t, customer.Matches("@email.com"))
	assert.True(t, customer.Matches(""))
	assert.False(t, customer.Matches("marie"))
}
