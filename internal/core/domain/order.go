package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusNeedsReview marks an aggregate whose line-item write failed
	// after the aggregate itself was persisted. The row is kept for manual
	// reconciliation rather than deleted, so order numbering stays stable.
	OrderStatusNeedsReview OrderStatus = "needs_review"
)

type Order struct {
	ID            int64
	Number        string
	UserID        string
	Status        OrderStatus
	Totals        Totals
	Shipping      ShippingAddress
	PaymentMethod string
	CouponCode    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLine is one persisted line item. An OrderLine only ever exists for a
// cart line whose full quantity has already reduced available stock.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice int64
	Variant   string
}

// CheckoutResult is the caller-facing outcome of a committed saga. Aborted
// runs are reported through the typed errors in this package instead.
type CheckoutResult struct {
	OrderID     int64
	OrderNumber string
	Totals      Totals
}
