package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/port"
)

// OrderSnapshot is what the post-commit effects get to work with. The order
// is already durable; nothing here can unwind it.
type OrderSnapshot struct {
	OrderID        int64
	OrderNumber    string
	UserID         string
	Total          int64
	LoyaltyApplied int64
	Lines          []domain.OrderLine
}

// PostCommit runs the fire-and-forget effects after the saga's commit point:
// loyalty redemption and accrual, the confirmation event, and the low-stock
// sweep. Each effect is isolated; a failure is logged and counted, never
// returned.
type PostCommit struct {
	loyalty        port.LoyaltyLedger
	notifier       port.Notifier
	levels         port.StockLevels
	logger         zerolog.Logger
	loyaltyEnabled bool
	// earnDivisor converts rupees spent into points earned (points = total / earnDivisor).
	earnDivisor int64
	lowStockAt  int
}

func NewPostCommit(
	loyalty port.LoyaltyLedger,
	notifier port.Notifier,
	levels port.StockLevels,
	logger zerolog.Logger,
	loyaltyEnabled bool,
	lowStockAt int,
) *PostCommit {
	return &PostCommit{
		loyalty:        loyalty,
		notifier:       notifier,
		levels:         levels,
		logger:         logger,
		loyaltyEnabled: loyaltyEnabled,
		earnDivisor:    100,
		lowStockAt:     lowStockAt,
	}
}

// Dispatch runs every effect regardless of earlier effect failures.
func (p *PostCommit) Dispatch(ctx context.Context, o OrderSnapshot) {
	log := p.logger.With().Int64("order_id", o.OrderID).Str("order_number", o.OrderNumber).Logger()

	if o.LoyaltyApplied > 0 && p.loyalty != nil {
		if err := p.loyalty.Redeem(ctx, o.UserID, o.LoyaltyApplied); err != nil {
			log.Error().Str("effect", "loyalty_redeem").Err(err).Msg("post-commit effect failed")
		}
	}

	if p.loyaltyEnabled && p.loyalty != nil {
		points := o.Total / p.earnDivisor
		if points > 0 {
			if err := p.loyalty.Earn(ctx, o.UserID, points); err != nil {
				log.Error().Str("effect", "loyalty_earn").Err(err).Msg("post-commit effect failed")
			}
		}
	}

	if p.notifier != nil {
		confirmation := port.OrderConfirmation{
			OrderID:     o.OrderID,
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			Total:       o.Total,
			Lines:       o.Lines,
		}
		if err := p.notifier.OrderConfirmed(ctx, confirmation); err != nil {
			log.Error().Str("effect", "confirmation").Err(err).Msg("post-commit effect failed")
		}
	}

	p.sweepLowStock(ctx, log, o.Lines)
}

// sweepLowStock checks the products this order touched and raises an alert
// for any at or below the threshold.
func (p *PostCommit) sweepLowStock(ctx context.Context, log zerolog.Logger, lines []domain.OrderLine) {
	if p.levels == nil || p.notifier == nil || p.lowStockAt <= 0 {
		return
	}
	for _, line := range lines {
		level, err := p.levels.StockLevel(ctx, line.ProductID)
		if err != nil {
			log.Error().Str("effect", "low_stock").Str("product_id", line.ProductID).
				Err(err).Msg("post-commit effect failed")
			continue
		}
		if level > p.lowStockAt {
			continue
		}
		if err := p.notifier.LowStock(ctx, line.ProductID, level); err != nil {
			log.Error().Str("effect", "low_stock").Str("product_id", line.ProductID).
				Err(err).Msg("post-commit effect failed")
		}
	}
}
