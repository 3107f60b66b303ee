package store

import (
	"context"

	"gamestore_pos/internal/models"
)

// Storage contract consumed by the services. Save is an atomic upsert per
// call; GetX returns (nil, nil) when the entity does not exist, mirroring
// how callers distinguish "absent" from "failed".

type CatalogStore interface {
	ListConfigurables(ctx context.Context) ([]models.ConfigurableProduct, error)
	GetConfigurable(ctx context.Context, id string) (*models.ConfigurableProduct, error)
	SaveConfigurable(ctx context.Context, p models.ConfigurableProduct) error
	DeleteConfigurable(ctx context.Context, id string) error

	ListVariants(ctx context.Context) ([]models.SimpleProduct, error)
	GetVariant(ctx context.Context, id string) (*models.SimpleProduct, error)
	SaveVariant(ctx context.Context, p models.SimpleProduct) error
	DeleteVariant(ctx context.Context, id string) error
}

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	SaveCustomer(ctx context.Context, c models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// Purchases and transactions are append-only audit records: no delete.

type PurchaseStore interface {
	ListPurchases(ctx context.Context) ([]models.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*models.Purchase, error)
	SavePurchase(ctx context.Context, p models.Purchase) error
}

type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, t models.Transaction) error
}
