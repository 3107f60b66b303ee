package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Recoverable error kinds surfaced to callers. Handlers dispatch on these
// with errors.Is; everything else is either wrapped infrastructure failure
// or a panic-class invariant violation.
var (
	ErrValidation   = errors.New("validation failed")
	ErrOverpayment  = errors.New("payment exceeds the remaining amount")
	ErrUnderpayment = errors.New("payments do not cover the total")
)

// PaymentMethod is how a sale or purchase is settled. MethodMixed appears
// only on transactions settled by more than one payment line.
type PaymentMethod string

const (
	MethodCash  PaymentMethod = "cash"
	MethodCard  PaymentMethod = "card"
	MethodCheck PaymentMethod = "check"
	MethodMixed PaymentMethod = "mixed"
)

func (m PaymentMethod) ValidForTender() bool {
	switch m {
	case MethodCash, MethodCard, MethodCheck:
		return true
	}
	return false
}

type Customer struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LoyaltyPoints int    `json:"loyalty_points"`
}

// Matches reports whether the search term occurs in the customer's full name
// or email, case-insensitively. Pure predicate, no stored index.
func (c Customer) Matches(term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	fullName := strings.ToLower(c.FirstName + " " + c.LastName)
	return strings.Contains(fullName, t) || strings.Contains(strings.ToLower(c.Email), t)
}

// Accepted identity documents for used-goods intake. The police register
// requires one of these per seller.
const (
	DocumentNationalID    = "Carte d'identité"
	DocumentPassport      = "Passeport"
	DocumentDriverLicense = "Permis de conduire"
)

func ValidDocumentType(t string) bool {
	switch t {
	case DocumentNationalID, DocumentPassport, DocumentDriverLicense:
		return true
	}
	return false
}

// Seller is the counterparty the shop buys used goods from, captured once
// per purchase for legal traceability.
type Seller struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code"`
	City           string `json:"city"`
	Phone          string `json:"phone"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
}

// Validate checks the fields legally required for a used-goods purchase.
// Address fields are optional; identity and document capture are not.
func (s Seller) Validate() error {
	if s.FirstName == "" || s.LastName == "" {
		return fmt.Errorf("%w: seller first and last name are required", ErrValidation)
	}
	if !ValidDocumentType(s.DocumentType) {
		return fmt.Errorf("%w: unknown document type %q", ErrValidation, s.DocumentType)
	}
	if strings.TrimSpace(s.DocumentNumber) == "" {
		return fmt.Errorf("%w: seller document number is required", ErrValidation)
	}
	return nil
}

// PurchaseLineItem is one entry of a seller intake. Used goods frequently
// arrive without a legible barcode or serial, so EAN and SerialNumber may be
// empty; name, quantity and prices are structural.
type PurchaseLineItem struct {
	EAN                  string          `json:"ean"`
	Name                 string          `json:"name"`
	SerialNumber         string          `json:"serial_number"`
	Quantity             int             `json:"quantity"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
	EstimatedResalePrice decimal.Decimal `json:"estimated_resale_price"`
	Condition            Condition       `json:"condition"`
}

func (li PurchaseLineItem) Validate() error {
	if li.Name == "" {
		return fmt.Errorf("%w: line item requires a name", ErrValidation)
	}
	if li.Quantity < 1 {
		return fmt.Errorf("%w: line item quantity must be at least 1", ErrValidation)
	}
	if li.PurchasePrice.IsNegative() || li.EstimatedResalePrice.IsNegative() {
		return fmt.Errorf("%w: line item prices must not be negative", ErrValidation)
	}
	if !li.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrValidation, li.Condition)
	}
	return nil
}

// PurchaseTotal sums purchase price × quantity over the line items.
func PurchaseTotal(lines []PurchaseLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range lines {
		total = total.Add(li.PurchasePrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total
}

// Purchase is the auditable record of a seller intake. Never mutated after
// creation.
type Purchase struct {
	ID            string             `json:"id"`
	Date          time.Time          `json:"date"`
	Seller        Seller             `json:"seller"`
	Lines         []PurchaseLineItem `json:"lines"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
}

// NewPurchase validates the seller and line items and stamps the total. The
// caller supplies identity and capture date.
func NewPurchase(id string, date time.Time, seller Seller, lines []PurchaseLineItem, method PaymentMethod) (Purchase, error) {
	if err := seller.Validate(); err != nil {
		return Purchase{}, err
	}
	if len(lines) == 0 {
		return Purchase{}, fmt.Errorf("%w: purchase requires at least one line item", ErrValidation)
	}
	for i, li := range lines {
		if err := li.Validate(); err != nil {
			return Purchase{}, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	if !method.ValidForTender() {
		return Purchase{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}
	snapshot := make([]PurchaseLineItem, len(lines))
	copy(snapshot, lines)
	return Purchase{
		ID:            id,
		Date:          date,
		Seller:        seller,
		Lines:         snapshot,
		TotalAmount:   PurchaseTotal(snapshot),
		PaymentMethod: method,
	}, nil
}

// Transaction is a completed sale: the cart snapshot, its total, the payment
// breakdown and the resolved method. Immutable once created.
type Transaction struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Lines         []CartLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Payments      []PaymentDetail `json:"payments"`
	Customer      *Customer       `json:"customer,omitempty"`
}
