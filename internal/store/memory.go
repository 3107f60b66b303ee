package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
)

// MemoryStore is the default backend: every collection lives in memory,
// guarded by one RWMutex, with insertion order preserved for listings.
type MemoryStore struct {
	mu sync.RWMutex

	configurables     map[string]models.ConfigurableProduct
	configurableOrder []string
	variants          map[string]models.SimpleProduct
	variantOrder      []string
	customers         map[string]models.Customer
	customerOrder     []string
	purchases         map[string]models.Purchase
	purchaseOrder     []string
	transactions      map[string]models.Transaction
	transactionOrder  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configurables: make(map[string]models.ConfigurableProduct),
		variants:      make(map[string]models.SimpleProduct),
		customers:     make(map[string]models.Customer),
		purchases:     make(map[string]models.Purchase),
		transactions:  make(map[string]models.Transaction),
	}
}

func (s *MemoryStore) ListConfigurables(ctx context.Context) ([]models.ConfigurableProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ConfigurableProduct, 0, len(s.configurableOrder))
	for _, id := range s.configurableOrder {
		out = append(out, s.configurables[id])
	}
	return out, nil
}

func (s *MemoryStore) GetConfigurable(ctx context.Context, id string) (*models.ConfigurableProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.configurables[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) SaveConfigurable(ctx context.Context, p models.ConfigurableProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configurables[p.ID]; !ok {
		s.configurableOrder = append(s.configurableOrder, p.ID)
	}
	s.configurables[p.ID] = p
	return nil
}

func (s *MemoryStore) DeleteConfigurable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configurables[id]; !ok {
		return nil
	}
	delete(s.configurables, id)
	s.configurableOrder = removeID(s.configurableOrder, id)
	return nil
}

func (s *MemoryStore) ListVariants(ctx context.Context) ([]models.SimpleProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SimpleProduct, 0, len(s.variantOrder))
	for _, id := range s.variantOrder {
		out = append(out, s.variants[id])
	}
	return out, nil
}

func (s *MemoryStore) GetVariant(ctx context.Context, id string) (*models.SimpleProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.variants[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) SaveVariant(ctx context.Context, p models.SimpleProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[p.ID]; !ok {
		s.variantOrder = append(s.variantOrder, p.ID)
	}
	s.variants[p.ID] = p
	return nil
}

func (s *MemoryStore) DeleteVariant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[id]; !ok {
		return nil
	}
	delete(s.variants, id)
	s.variantOrder = removeID(s.variantOrder, id)
	return nil
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		out = append(out, s.customers[id])
	}
	return out, nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) SaveCustomer(ctx context.Context, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		s.customerOrder = append(s.customerOrder, c.ID)
	}
	s.customers[c.ID] = c
	return nil
}

func (s *MemoryStore) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return nil
	}
	delete(s.customers, id)
	s.customerOrder = removeID(s.customerOrder, id)
	return nil
}

func (s *MemoryStore) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Purchase, 0, len(s.purchaseOrder))
	for _, id := range s.purchaseOrder {
		out = append(out, s.purchases[id])
	}
	return out, nil
}

func (s *MemoryStore) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) SavePurchase(ctx context.Context, p models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[p.ID]; !ok {
		s.purchaseOrder = append(s.purchaseOrder, p.ID)
	}
	s.purchases[p.ID] = p
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, 0, len(s.transactionOrder))
	for _, id := range s.transactionOrder {
		out = append(out, s.transactions[id])
	}
	return out, nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) SaveTransaction(ctx context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		s.transactionOrder = append(s.transactionOrder, t.ID)
	}
	s.transactions[t.ID] = t
	return nil
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// SeedSampleData loads the demo catalog and customers used when the memory
// backend starts empty.
func SeedSampleData(ctx context.Context, s *MemoryStore) error {
	type seedProduct struct {
		ean, name string
		condition models.Condition
		price     string
		stock     int
	}
	seeds := []seedProduct{
		{"0711719346005", "PlayStation 5", models.ConditionNew, "499.99", 10},
		{"0196388098514", "Xbox Series X", models.ConditionNew, "499.99", 3},
		{"0045496453435", "Nintendo Switch OLED", models.ConditionGood, "349.99", 5},
	}
	for _, sp := range seeds {
		parent, err := models.NewConfigurableProduct(sp.ean, sp.name)
		if err != nil {
			return err
		}
		variant, err := models.InstantiateVariant(parent, sp.condition, decimal.RequireFromString(sp.price))
		if err != nil {
			return err
		}
		variant.Stock = sp.stock
		parent.Variants = append(parent.Variants, variant)
		if err := s.SaveConfigurable(ctx, parent); err != nil {
			return err
		}
		if err := s.SaveVariant(ctx, variant); err != nil {
			return err
		}
	}

	customers := []models.Customer{
		{ID: "cust-jean-dupont", FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@email.com", Phone: "06 12 34 56 78", LoyaltyPoints: 150},
		{ID: "cust-marie-martin", FirstName: "Marie", LastName: "Martin", Email: "marie.martin@email.com", Phone: "06 98 76 54 32", LoyaltyPoints: 75},
	}
	for _, c := range customers {
		if err := s.SaveCustomer(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
