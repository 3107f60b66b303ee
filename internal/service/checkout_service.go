package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/receipt"
	"gamestore_pos/internal/store"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionSettled  = errors.New("checkout session already settled")
	ErrCartLocked      = errors.New("cart cannot change once payment has started")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// CheckoutService drives in-progress sales. Each register session moves
// through Building -> AwaitingPayment -> Settled; the session registry lives
// in process and is mirrored to redis with a TTL so an open cart survives a
// restart. Exactly one caller mutates a session at a time: every operation
// holds the session's own lock.
type CheckoutService struct {
	logger       *log.Logger
	catalog      store.CatalogStore
	customers    store.CustomerStore
	transactions store.TransactionStore
	sessionCache *store.RedisStore
	deliverer    receipt.Deliverer
	sessionTTL   time.Duration

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

type checkoutSession struct {
	mu   sync.Mutex
	data models.CheckoutSession
}

// NewCheckoutService wires the checkout engine. sessionCache and deliverer
// may be nil; both are optional collaborators whose absence or failure never
// blocks a sale.
func NewCheckoutService(
	logger *log.Logger,
	catalog store.CatalogStore,
	customers store.CustomerStore,
	transactions store.TransactionStore,
	sessionCache *store.RedisStore,
	deliverer receipt.Deliverer,
	sessionTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		logger:       logger,
		catalog:      catalog,
		customers:    customers,
		transactions: transactions,
		sessionCache: sessionCache,
		deliverer:    deliverer,
		sessionTTL:   sessionTTL,
		sessions:     make(map[string]*checkoutSession),
	}
}

// StartSession opens an empty cart at the register.
func (s *CheckoutService) StartSession(ctx context.Context) (models.CheckoutSession, error) {
	now := time.Now().UTC()
	session := &checkoutSession{
		data: models.CheckoutSession{
			ID:        uuid.NewString(),
			State:     models.SessionBuilding,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	s.mu.Lock()
	s.sessions[session.data.ID] = session
	s.mu.Unlock()

	s.mirrorSession(ctx, session.data)
	return session.data, nil
}

func (s *CheckoutService) getSession(id string) (*checkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// mirrorSession pushes the session snapshot to redis. Best-effort: a cache
// failure only logs a warning.
func (s *CheckoutService) mirrorSession(ctx context.Context, data models.CheckoutSession) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.StoreSession(ctx, data, s.sessionTTL); err != nil {
		s.logger.Printf("Warning: failed to mirror session %s to redis: %v", data.ID, err)
	}
}

func (s *CheckoutService) dropMirror(ctx context.Context, id string) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.DeleteSession(ctx, id); err != nil {
		s.logger.Printf("Warning: failed to delete session %s from redis: %v", id, err)
	}
}

// withSession runs fn under the session's lock and mirrors the result.
func (s *CheckoutService) withSession(ctx context.Context, id string, fn func(*models.CheckoutSession) error) (models.CheckoutSession, error) {
	session, err := s.getSession(id)
	if err != nil {
		return models.CheckoutSession{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.data.State == models.SessionSettled {
		return models.CheckoutSession{}, ErrSessionSettled
	}
	if err := fn(&session.data); err != nil {
		return models.CheckoutSession{}, err
	}
	session.data.UpdatedAt = time.Now().UTC()
	s.mirrorSession(ctx, session.data)
	return session.data, nil
}

// AddItem puts one unit of a sellable variant in the cart, merging with an
// existing line for the same product.
func (s *CheckoutService) AddItem(ctx context.Context, sessionID, productID string) (models.CheckoutSession, error) {
	variant, err := s.catalog.GetVariant(ctx, productID)
	if err != nil {
		return models.CheckoutSession{}, fmt.Errorf("failed to load product: %w", err)
	}
	if variant == nil {
		return models.CheckoutSession{}, ErrProductNotFound
	}
	if variant.Stock < 1 {
		return models.CheckoutSession{}, fmt.Errorf("%w: %s", ErrOutOfStock, variant.ID)
	}

	return s.withSession(ctx, sessionID, func(data *models.CheckoutSession) error {
		if data.State != models.SessionBuilding {
			return ErrCartLocked
		}
		data.Cart = data.Cart.AddItem(*variant)
		return nil
	})
}

// AdjustQuantity applies a delta to a cart line, clamped at quantity 1.
func (s *CheckoutService) AdjustQuantity(ctx context.Context, sessionID, productID string, delta int) (models.CheckoutSession, error) {
	return s.withSession(ctx, sessionID, func(data *models.CheckoutSession) error {
		if data.State != models.SessionBuilding {
			return ErrCartLocked
		}
		data.Cart = data.Cart.AdjustQuantity(productID, delta)
		return nil
	})
}

// RemoveItem drops a cart line entirely.
func (s *CheckoutService) RemoveItem(ctx context.Context, sessionID, productID string) (models.CheckoutSession, error) {
	return s.withSession(ctx, sessionID, func(data *models.CheckoutSession) error {
		if data.State != models.SessionBuilding {
			return ErrCartLocked
		}
		data.Cart = data.Cart.RemoveItem(productID)
		return nil
	})
}

// AttachCustomer links a known customer to the sale for loyalty accrual and
// the receipt header.
func (s *CheckoutService) AttachCustomer(ctx context.Context, sessionID, customerID string) (models.CheckoutSession, error) {
	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return models.CheckoutSession{}, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return models.CheckoutSession{}, ErrCustomerNotFound
	}
	return s.withSession(ctx, sessionID, func(data *models.CheckoutSession) error {
		data.CustomerID = customer.ID
		return nil
	})
}

// RecordPayment adds one tender line to the split. The first payment locks
// the cart and moves the session to AwaitingPayment.
func (s *CheckoutService) RecordPayment(ctx context.Context, sessionID string, method models.PaymentMethod, amount decimal.Decimal) (models.CheckoutSession, error) {
	return s.withSession(ctx, sessionID, func(data *models.CheckoutSession) error {
		if data.Cart.IsEmpty() {
			return fmt.Errorf("%w: nothing to pay, cart is empty", models.ErrValidation)
		}
		payments, err := models.RecordPayment(data.Payments, data.Cart.Total(), models.PaymentDetail{Method: method, Amount: amount})
		if err != nil {
			return err
		}
		data.Payments = payments
		data.State = models.SessionAwaitingPayment
		return nil
	})
}

// Remaining reports what is still owed on a session.
func (s *CheckoutService) Remaining(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return models.Remaining(session.data.Cart.Total(), session.data.Payments), nil
}

// Settle finalizes the session into an immutable transaction: payments must
// cover the total exactly. On success stock is decremented, loyalty points
// accrue to the attached customer, the transaction is persisted and the
// receipt is rendered and delivered. Receipt delivery failures are reported
// as warnings only; the sale is already settled.
func (s *CheckoutService) Settle(ctx context.Context, sessionID string) (models.Transaction, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return models.Transaction{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.data.State == models.SessionSettled {
		return models.Transaction{}, ErrSessionSettled
	}

	var customer *models.Customer
	if session.data.CustomerID != "" {
		customer, err = s.customers.GetCustomer(ctx, session.data.CustomerID)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to load customer: %w", err)
		}
	}

	transaction, err := models.Settle(uuid.NewString(), time.Now().UTC(), session.data.Cart, session.data.Payments, customer)
	if err != nil {
		return models.Transaction{}, err
	}

	if err := s.transactions.SaveTransaction(ctx, transaction); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	session.data.State = models.SessionSettled
	session.data.UpdatedAt = time.Now().UTC()

	s.decrementStock(ctx, transaction)
	s.accrueLoyalty(ctx, transaction)
	s.deliverReceipt(transaction)

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	s.dropMirror(ctx, sessionID)

	return transaction, nil
}

// PayInFull is the one-shot shortcut: a single tender for the whole total,
// then settlement.
func (s *CheckoutService) PayInFull(ctx context.Context, sessionID string, method models.PaymentMethod) (models.Transaction, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return models.Transaction{}, err
	}

	session.mu.Lock()
	if session.data.State == models.SessionSettled {
		session.mu.Unlock()
		return models.Transaction{}, ErrSessionSettled
	}
	if session.data.Cart.IsEmpty() {
		session.mu.Unlock()
		return models.Transaction{}, fmt.Errorf("%w: nothing to pay, cart is empty", models.ErrValidation)
	}
	total := session.data.Cart.Total()
	payments, err := models.RecordPayment(session.data.Payments, total, models.PaymentDetail{Method: method, Amount: models.Remaining(total, session.data.Payments)})
	if err != nil {
		session.mu.Unlock()
		return models.Transaction{}, err
	}
	session.data.Payments = payments
	session.data.State = models.SessionAwaitingPayment
	session.mu.Unlock()

	return s.Settle(ctx, sessionID)
}

// Abandon discards a session that never settled. Nothing was persisted, so
// there is nothing to compensate.
func (s *CheckoutService) Abandon(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.dropMirror(ctx, sessionID)
	return nil
}

// GetSession returns a snapshot of an open session.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (models.CheckoutSession, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return models.CheckoutSession{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.data, nil
}

// SweepExpiredSessions discards sessions idle past the TTL. Run periodically
// from the background sweeper.
func (s *CheckoutService) SweepExpiredSessions(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-s.sessionTTL)

	s.mu.Lock()
	var expired []string
	for id, session := range s.sessions {
		if session.data.UpdatedAt.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.dropMirror(ctx, id)
	}
	if len(expired) > 0 {
		s.logger.Printf("Swept %d expired checkout sessions", len(expired))
	}
	return len(expired)
}

func (s *CheckoutService) decrementStock(ctx context.Context, t models.Transaction) {
	for _, line := range t.Lines {
		variant, err := s.catalog.GetVariant(ctx, line.Product.ID)
		if err != nil || variant == nil {
			s.logger.Printf("Warning: could not load %s for stock decrement: %v", line.Product.ID, err)
			continue
		}
		variant.Stock -= line.Quantity
		if variant.Stock < 0 {
			s.logger.Printf("Warning: %s sold %d units with only %d in stock", variant.ID, line.Quantity, variant.Stock+line.Quantity)
			variant.Stock = 0
		}
		if err := s.catalog.SaveVariant(ctx, *variant); err != nil {
			s.logger.Printf("Warning: failed to save stock for %s: %v", variant.ID, err)
		}
	}
}

// accrueLoyalty credits one point per whole currency unit of the settled
// total.
func (s *CheckoutService) accrueLoyalty(ctx context.Context, t models.Transaction) {
	if t.Customer == nil {
		return
	}
	points := int(t.Total.Floor().IntPart())
	if points <= 0 {
		return
	}
	customer, err := s.customers.GetCustomer(ctx, t.Customer.ID)
	if err != nil || customer == nil {
		s.logger.Printf("Warning: could not load customer %s for loyalty accrual: %v", t.Customer.ID, err)
		return
	}
	customer.LoyaltyPoints += points
	if err := s.customers.SaveCustomer(ctx, *customer); err != nil {
		s.logger.Printf("Warning: failed to save loyalty points for %s: %v", customer.ID, err)
	}
}

func (s *CheckoutService) deliverReceipt(t models.Transaction) {
	if s.deliverer == nil {
		return
	}
	doc := receipt.RenderTransaction(t)
	target := ""
	if t.Customer != nil {
		target = t.Customer.Email
	}
	if err := s.deliverer.Deliver(doc, target); err != nil {
		s.logger.Printf("Warning: receipt delivery for transaction %s failed: %v", t.ID, err)
	}
}

// ListTransactions exposes the settled sales log.
func (s *CheckoutService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
