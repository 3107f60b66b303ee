package service

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, store.SeedSampleData(context.Background(), s))
	return s
}

func newTestCheckout(t *testing.T, s *store.MemoryStore) *CheckoutService {
	t.Helper()
	return NewCheckoutService(testLogger(), s, s, s, nil, nil, time.Hour)
}

const (
	ps5ID  = "0711719346005-neuf"
	xboxID = "0196388098514-neuf"
)

func TestCheckoutSplitPaymentFlow(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	checkout := newTestCheckout(t, s)

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SessionBuilding, session.State)

	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, xboxID)
	require.NoError(t, err)

	remaining, err := checkout.Remaining(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.RequireFromString("1499.97")))

	session, err = checkout.RecordPayment(ctx, session.ID, models.MethodCash, decimal.RequireFromString("999.97"))
	require.NoError(t, err)
	assert.Equal(t, models.SessionAwaitingPayment, session.State)

	// Settlement is blocked while money is still owed.
	_, err = checkout.Settle(ctx, session.ID)
	assert.ErrorIs(t, err, models.ErrUnderpayment)

	_, err = checkout.RecordPayment(ctx, session.ID, models.MethodCard, decimal.RequireFromString("500.00"))
	require.NoError(t, err)

	transaction, err := checkout.Settle(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, transaction.Total.Equal(decimal.RequireFromString("1499.97")))
	assert.Equal(t, models.MethodMixed, transaction.PaymentMethod)

	// The session is gone once settled.
	_, err = checkout.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The transaction is on the audit log.
	transactions, err := checkout.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, transaction.ID, transactions[0].ID)

	// Stock moved: 10 PS5 - 2 sold, 3 Xbox - 1 sold.
	ps5, err := s.GetVariant(ctx, ps5ID)
	require.NoError(t, err)
	assert.Equal(t, 8, ps5.Stock)
	xbox, err := s.GetVariant(ctx, xboxID)
	require.NoError(t, err)
	assert.Equal(t, 2, xbox.Stock)
}

func TestCheckoutOverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)

	_, err = checkout.RecordPayment(ctx, session.ID, models.MethodCash, decimal.RequireFromString("1000.00"))
	assert.ErrorIs(t, err, models.ErrOverpayment)
}

func TestCheckoutCartLockedAfterPayment(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)
	_, err = checkout.RecordPayment(ctx, session.ID, models.MethodCash, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	_, err = checkout.AddItem(ctx, session.ID, xboxID)
	assert.ErrorIs(t, err, ErrCartLocked)
	_, err = checkout.RemoveItem(ctx, session.ID, ps5ID)
	assert.ErrorIs(t, err, ErrCartLocked)
}

func TestPayInFull(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, xboxID)
	require.NoError(t, err)

	transaction, err := checkout.PayInFull(ctx, session.ID, models.MethodCard)
	require.NoError(t, err)
	assert.Equal(t, models.MethodCard, transaction.PaymentMethod)
	require.Len(t, transaction.Payments, 1)
	assert.True(t, transaction.Payments[0].Amount.Equal(decimal.RequireFromString("499.99")))
}

func TestLoyaltyAccrualOnSettlement(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	checkout := newTestCheckout(t, s)

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)
	_, err = checkout.AttachCustomer(ctx, session.ID, "cust-jean-dupont")
	require.NoError(t, err)

	transaction, err := checkout.PayInFull(ctx, session.ID, models.MethodCash)
	require.NoError(t, err)
	require.NotNil(t, transaction.Customer)

	// 499.99 spent earns 499 points on top of the seeded 150.
	customer, err := s.GetCustomer(ctx, "cust-jean-dupont")
	require.NoError(t, err)
	assert.Equal(t, 649, customer.LoyaltyPoints)
}

func TestAbandonDiscardsSession(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	_, err = checkout.AddItem(ctx, session.ID, ps5ID)
	require.NoError(t, err)

	require.NoError(t, checkout.Abandon(ctx, session.ID))
	_, err = checkout.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, checkout.Abandon(ctx, session.ID), ErrSessionNotFound)

	// Nothing was persisted for the abandoned cart.
	transactions, err := checkout.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestSweepExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)
	checkout := NewCheckoutService(testLogger(), s, s, s, nil, nil, time.Nanosecond)

	_, err := checkout.StartSession(ctx)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, 1, checkout.SweepExpiredSessions(ctx))
	assert.Equal(t, 0, checkout.SweepExpiredSessions(ctx))
}

func TestAddItemUnknownProduct(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)

	_, err = checkout.AddItem(ctx, session.ID, "0000000000000-neuf")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordPaymentOnEmptyCart(t *testing.T) {
	ctx := context.Background()
	checkout := newTestCheckout(t, seededStore(t))

	session, err := checkout.StartSession(ctx)
	require.NoError(t, err)

	_, err = checkout.RecordPayment(ctx, session.ID, models.MethodCash, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, models.ErrValidation)
}
