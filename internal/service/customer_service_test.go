package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/store"
)

func TestCreateAndUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(testLogger(), store.NewMemoryStore())

	customer, err := svc.CreateCustomer(ctx, CustomerFields{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "jean.dupont@email.com",
		Phone:     "06 12 34 56 78",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.Equal(t, 0, customer.LoyaltyPoints)

	credited, err := svc.AddLoyaltyPoints(ctx, customer.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, 150, credited.LoyaltyPoints)

	updated, err := svc.UpdateCustomer(ctx, customer.ID, CustomerFields{
		FirstName: "Jean",
		LastName:  "Durand",
		Email:     "jean.durand@email.com",
		Phone:     "06 12 34 56 78",
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, updated.ID)
	assert.Equal(t, "Durand", updated.LastName)
	assert.Equal(t, 150, updated.LoyaltyPoints, "update must never touch the balance")
}

func TestAddLoyaltyPointsRejectsNegative(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(testLogger(), store.NewMemoryStore())

	customer, err := svc.CreateCustomer(ctx, CustomerFields{FirstName: "Marie", LastName: "Martin"})
	require.NoError(t, err)

	_, err = svc.AddLoyaltyPoints(ctx, customer.ID, -10)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.AddLoyaltyPoints(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCreateCustomerRequiresName(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(testLogger(), store.NewMemoryStore())

	_, err := svc.CreateCustomer(ctx, CustomerFields{FirstName: "", LastName: "Martin"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSearchCustomers(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, store.SeedSampleData(ctx, s))
	svc := NewCustomerService(testLogger(), s)

	found, err := svc.SearchCustomers(ctx, "dupont")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Jean", found[0].FirstName)

	found, err = svc.SearchCustomers(ctx, "marie.martin@")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Martin", found[0].LastName)

	all, err := svc.SearchCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateMissingCustomer(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(testLogger(), store.NewMemoryStore())

	_, err := svc.UpdateCustomer(ctx, "missing", CustomerFields{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
