package domain

import "time"

// ============================================================
// Billing — downstream of the payment processor webhook.
// Signature verification happens before events reach this backend;
// here we only record them and flip the access flag.
// ============================================================

// Billing event types forwarded by the payment processor.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// BillingEvent is the payload of POST /v1/billing/events.
type BillingEvent struct {
	EventID        string  `json:"event_id"`
	Type           string  `json:"type"`
	UserID         string  `json:"user_id"`
	CustomerID     string  `json:"customer_id,omitempty"`
	SubscriptionID string  `json:"subscription_id,omitempty"`
	ProductID      string  `json:"product_id,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	Status         string  `json:"status,omitempty"`
}

// PaymentRecord is a stored one-time purchase.
type PaymentRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	ProductID string    `json:"product_id,omitempty"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SubscriptionRecord is a stored subscription and its lifecycle status.
type SubscriptionRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SubscriptionID string    `json:"subscription_id"`
	CustomerID     string    `json:"customer_id,omitempty"`
	Status         string    `json:"status"` // active, canceled
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// AccessStatus is returned by GET /v1/users/{userId}/access and gates the
// frontend routes.
type AccessStatus struct {
	UserID     string `json:"user_id"`
	HasAccess  bool   `json:"has_access"`
	HasPayment bool   `json:"has_payment"`
}
