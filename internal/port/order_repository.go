package port

import (
	"context"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// OrderRepository persists the order aggregate and its line items as two
// separate writes. The store offers no cross-record atomicity; failure
// handling between the two writes belongs to the saga coordinator.
type OrderRepository interface {
	// CreateOrder inserts the aggregate record and returns its id.
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)

	// CreateOrderLines inserts the line rows referencing orderID.
	CreateOrderLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error

	// FlagForReview marks an aggregate whose lines write failed so it can be
	// found by reconciliation. The row is never deleted.
	FlagForReview(ctx context.Context, orderID int64, reason string) error
}
