package models

import "time"

// SessionState tracks a checkout through Building -> AwaitingPayment ->
// Settled. Abandoning a session in either of the first two states simply
// discards it; nothing is persisted until settlement succeeds.
type SessionState string

const (
	SessionBuilding        SessionState = "building"
	SessionAwaitingPayment SessionState = "awaiting_payment"
	SessionSettled         SessionState = "settled"
)

// CheckoutSession is one in-flight sale at the register. Exactly one caller
// drives a session at a time; the checkout service serializes access.
type CheckoutSession struct {
	ID         string          `json:"id"`
	State      SessionState    `json:"state"`
	Cart       Cart            `json:"cart"`
	Payments   []PaymentDetail `json:"payments"`
	CustomerID string          `json:"customer_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
