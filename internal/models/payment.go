package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDetail is one tender line of a split payment.
type PaymentDetail struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Remaining is total minus the sum of recorded payments. Decimal arithmetic
// keeps the settlement check exact: no epsilon comparison anywhere.
func Remaining(total decimal.Decimal, payments []PaymentDetail) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return total.Sub(paid)
}

// RecordPayment appends a tender line to the split. The amount must be
// positive and must not exceed what is still owed.
func RecordPayment(payments []PaymentDetail, total decimal.Decimal, detail PaymentDetail) ([]PaymentDetail, error) {
	if !detail.Method.ValidForTender() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, detail.Method)
	}
	if !detail.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	remaining := Remaining(total, payments)
	if detail.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: %s offered, %s remaining", ErrOverpayment, detail.Amount, remaining)
	}
	next := make([]PaymentDetail, len(payments), len(payments)+1)
	copy(next, payments)
	return append(next, detail), nil
}

// ResolveMethod reports the transaction's recorded payment method: the
// single tender's method when there is exactly one, "mixed" otherwise. The
// full breakdown stays on the transaction either way.
func ResolveMethod(payments []PaymentDetail) PaymentMethod {
	if len(payments) == 1 {
		return payments[0].Method
	}
	return MethodMixed
}

// Settle finalizes a cart into an immutable transaction. The recorded
// payments must cover the cart total exactly.
func Settle(id string, date time.Time, cart Cart, payments []PaymentDetail, customer *Customer) (Transaction, error) {
	if cart.IsEmpty() {
		return Transaction{}, fmt.Errorf("%w: nothing to settle, cart is empty", ErrValidation)
	}
	total := cart.Total()
	remaining := Remaining(total, payments)
	if remaining.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: %s still owed", ErrUnderpayment, remaining)
	}
	if remaining.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: paid %s over the total", ErrOverpayment, remaining.Neg())
	}
	snapshot := cart.clone()
	paymentsCopy := make([]PaymentDetail, len(payments))
	copy(paymentsCopy, payments)
	return Transaction{
		ID:            id,
		Date:          date,
		Lines:         snapshot.Lines,
		Total:         total,
		PaymentMethod: ResolveMethod(paymentsCopy),
		Payments:      paymentsCopy,
		Customer:      customer,
	}, nil
}
