package port

import (
	"context"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// IdempotencyGuard claims a checkout request id so a retried submission never
// starts a second saga.
type IdempotencyGuard interface {
	// Claim returns false if the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
}

// LoyaltyLedger applies loyalty point movements. Post-commit, best-effort.
type LoyaltyLedger interface {
	Earn(ctx context.Context, userID string, points int64) error
	Redeem(ctx context.Context, userID string, points int64) error
}

// OrderConfirmation is the snapshot published after the commit point.
type OrderConfirmation struct {
	OrderID     int64              `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      string             `json:"user_id"`
	Total       int64              `json:"total"`
	Lines       []domain.OrderLine `json:"lines"`
}

// Notifier publishes post-commit events. Failures never unwind the order.
type Notifier interface {
	OrderConfirmed(ctx context.Context, confirmation OrderConfirmation) error
	LowStock(ctx context.Context, productID string, level int) error
}
