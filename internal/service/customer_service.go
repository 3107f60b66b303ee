package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/store"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerFields carries the editable identity of a customer. Id and loyalty
// balance are never part of it: updates can replace identity but must leave
// the balance untouched.
type CustomerFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (f CustomerFields) validate() error {
	if f.FirstName == "" || f.LastName == "" {
		return fmt.Errorf("%w: customer first and last name are required", models.ErrValidation)
	}
	return nil
}

// CustomerService owns the customer records and their loyalty balances.
type CustomerService struct {
	logger    *log.Logger
	customers store.CustomerStore
}

func NewCustomerService(logger *log.Logger, customers store.CustomerStore) *CustomerService {
	return &CustomerService{
		logger:    logger,
		customers: customers,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, fields CustomerFields) (models.Customer, error) {
	if err := fields.validate(); err != nil {
		return models.Customer{}, err
	}
	customer := models.Customer{
		ID:            uuid.NewString(),
		FirstName:     fields.FirstName,
		LastName:      fields.LastName,
		Email:         fields.Email,
		Phone:         fields.Phone,
		LoyaltyPoints: 0,
	}
	if err := s.customers.SaveCustomer(ctx, customer); err != nil {
		return models.Customer{}, fmt.Errorf("failed to save customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer replaces the identity fields and preserves both the id and
// the loyalty balance.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, fields CustomerFields) (models.Customer, error) {
	if err := fields.validate(); err != nil {
		return models.Customer{}, err
	}
	existing, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to load customer: %w", err)
	}
	if existing == nil {
		return models.Customer{}, ErrCustomerNotFound
	}
	existing.FirstName = fields.FirstName
	existing.LastName = fields.LastName
	existing.Email = fields.Email
	existing.Phone = fields.Phone
	if err := s.customers.SaveCustomer(ctx, *existing); err != nil {
		return models.Customer{}, fmt.Errorf("failed to save customer: %w", err)
	}
	return *existing, nil
}

// AddLoyaltyPoints credits points to a customer. There is no debit path:
// negative amounts are rejected.
func (s *CustomerService) AddLoyaltyPoints(ctx context.Context, id string, points int) (models.Customer, error) {
	if points < 0 {
		return models.Customer{}, fmt.Errorf("%w: loyalty points can only be added, got %d", models.ErrValidation, points)
	}
	existing, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to load customer: %w", err)
	}
	if existing == nil {
		return models.Customer{}, ErrCustomerNotFound
	}
	existing.LoyaltyPoints += points
	if err := s.customers.SaveCustomer(ctx, *existing); err != nil {
		return models.Customer{}, fmt.Errorf("failed to save customer: %w", err)
	}
	return *existing, nil
}

// SearchCustomers filters on name and email with the customer's Matches
// predicate. An empty term lists everyone.
func (s *CustomerService) SearchCustomers(ctx context.Context, term string) ([]models.Customer, error) {
	all, err := s.customers.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	out := make([]models.Customer, 0, len(all))
	for _, c := range all {
		if c.Matches(term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

// DeleteCustomer removes a customer record. List-level housekeeping only;
// settled transactions keep their own customer snapshot.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
