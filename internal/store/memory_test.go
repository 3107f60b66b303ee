package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamestore_pos/internal/models"
)

func TestMemoryStoreCustomerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	missing, err := s.GetCustomer(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, missing, "absent entities return nil, not an error")

	customer := models.Customer{ID: "c-1", FirstName: "Jean", LastName: "Dupont"}
	require.NoError(t, s.SaveCustomer(ctx, customer))

	got, err := s.GetCustomer(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jean", got.FirstName)

	// Save is an upsert: the most recently saved version wins.
	customer.FirstName = "Jeanne"
	require.NoError(t, s.SaveCustomer(ctx, customer))
	got, err = s.GetCustomer(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Jeanne", got.FirstName)

	require.NoError(t, s.DeleteCustomer(ctx, "c-1"))
	got, err = s.GetCustomer(ctx, "c-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting twice is harmless.
	require.NoError(t, s.DeleteCustomer(ctx, "c-1"))
}

func TestMemoryStoreListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, id := range []string{"c-3", "c-1", "c-2"} {
		require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: id}))
	}
	// Re-saving must not move an entity to the back.
	require.NoError(t, s.SaveCustomer(ctx, models.Customer{ID: "c-3", FirstName: "updated"}))

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, "c-3", customers[0].ID)
	assert.Equal(t, "c-1", customers[1].ID)
	assert.Equal(t, "c-2", customers[2].ID)
}

func TestMemoryStoreVariantIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	variant := models.SimpleProduct{ID: "v-1", Stock: 5, Price: decimal.NewFromInt(10)}
	require.NoError(t, s.SaveVariant(ctx, variant))

	got, err := s.GetVariant(ctx, "v-1")
	require.NoError(t, err)
	got.Stock = 99

	again, err := s.GetVariant(ctx, "v-1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock, "callers get copies, not aliases into the store")
}

func TestSeedSampleData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, SeedSampleData(ctx, s))

	products, err := s.ListConfigurables(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	ps5, err := s.GetVariant(ctx, "0711719346005-neuf")
	require.NoError(t, err)
	require.NotNil(t, ps5)
	assert.Equal(t, 10, ps5.Stock)
	assert.True(t, ps5.VAT.Equal(decimal.NewFromInt(20)))

	oled, err := s.GetVariant(ctx, "0045496453435-bon")
	require.NoError(t, err)
	require.NotNil(t, oled)
	assert.True(t, oled.VAT.IsZero())

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}
