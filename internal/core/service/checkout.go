package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/port"
	"github.com/anirudhm/vastra-checkout/pkg/metrics"
)

// sagaState tracks where a checkout attempt is in its lifecycle. The states
// exist for logging and for enforcing the single commit point; transitions
// are strictly sequential.
type sagaState string

const (
	stateIdle          sagaState = "idle"
	stateCouponPending sagaState = "coupon_pending"
	stateCouponSkipped sagaState = "coupon_skipped"
	stateCouponDone    sagaState = "coupon_reserved"
	stateStockPending  sagaState = "stock_pending"
	stateStockDone     sagaState = "stock_reserved"
	stateOrderWritten  sagaState = "order_written"
	stateItemsWritten  sagaState = "items_written"
	stateCommitted     sagaState = "committed"
	stateCompensating  sagaState = "compensating"
	stateAborted       sagaState = "aborted"
)

// compensation is one queued inverse operation. Entries are appended on each
// successful reservation and drained in reverse insertion order on abort.
type compensation struct {
	resource string // "stock" or "coupon"
	target   string
	quantity int
	action   func(ctx context.Context) error
}

// PlaceOrderInput is everything one checkout attempt needs, passed explicitly
// so the coordinator is a function of its inputs plus the remote procedures.
type PlaceOrderInput struct {
	RequestID     string
	UserID        string
	Lines         []domain.CartLine
	Shipping      domain.ShippingAddress
	PaymentMethod string
	CouponCode    string
	Pricing       PricingConfig
}

// Checkout coordinates the order-placement saga: a fixed sequence of
// individually-atomic remote operations with explicit compensations standing
// in for the multi-resource transaction the store cannot provide.
type Checkout struct {
	stock   port.StockReserver
	coupons *CouponClient
	orders  port.OrderRepository
	guard   port.IdempotencyGuard
	after   *PostCommit
	logger  zerolog.Logger
	metrics *metrics.SagaMetrics
}

func NewCheckout(
	stock port.StockReserver,
	coupons *CouponClient,
	orders port.OrderRepository,
	guard port.IdempotencyGuard,
	after *PostCommit,
	logger zerolog.Logger,
	m *metrics.SagaMetrics,
) *Checkout {
	return &Checkout{
		stock:   stock,
		coupons: coupons,
		orders:  orders,
		guard:   guard,
		after:   after,
		logger:  logger,
		metrics: m,
	}
}

// PlaceOrder runs one saga. It returns a committed result, or a typed error
// after everything reserved so far has been released. Steps are never
// parallelized: sequential processing keeps the set of successful stock
// reservations a prefix of the cart-line order, which is what makes the
// reverse-order compensation drain correct.
func (c *Checkout) PlaceOrder(ctx context.Context, in PlaceOrderInput) (domain.CheckoutResult, error) {
	start := time.Now()
	result, err := c.run(ctx, in)
	c.observe(err, time.Since(start))
	return result, err
}

func (c *Checkout) run(ctx context.Context, in PlaceOrderInput) (domain.CheckoutResult, error) {
	var zero domain.CheckoutResult

	if err := validateInput(in); err != nil {
		return zero, err
	}

	if in.RequestID != "" {
		ok, err := c.guard.Claim(ctx, in.RequestID)
		if err != nil {
			return zero, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return zero, domain.ErrDuplicateRequest
		}
	}

	log := c.logger.With().Str("user_id", in.UserID).Str("request_id", in.RequestID).Logger()
	state := stateIdle
	var comps []compensation

	subtotal := domain.Subtotal(in.Lines)
	pricing := in.Pricing
	pricing.CouponPercent = 0

	// Coupon first: on failure nothing has been reserved yet, so the abort
	// needs no compensation.
	if in.CouponCode != "" {
		state = stateCouponPending
		log.Debug().Str("state", string(state)).Str("coupon", in.CouponCode).Msg("reserving coupon")

		percent, err := c.coupons.Reserve(ctx, in.CouponCode, subtotal)
		if err != nil {
			log.Info().Str("coupon", in.CouponCode).Err(err).Msg("coupon reservation failed")
			return zero, err
		}
		pricing.CouponPercent = percent
		state = stateCouponDone
		comps = append(comps, compensation{
			resource: "coupon",
			target:   in.CouponCode,
			quantity: 1,
			action: func(ctx context.Context) error {
				return c.coupons.Release(ctx, in.CouponCode)
			},
		})
	} else {
		state = stateCouponSkipped
	}

	totals := CalculateTotals(in.Lines, pricing)

	// Stock, one line at a time in cart order. Each call is atomic only at
	// single-product granularity, so lines are never batched.
	for i, line := range in.Lines {
		state = stateStockPending
		log.Debug().Str("state", string(state)).Int("line", i).
			Str("product_id", line.ProductID).Int("quantity", line.Quantity).
			Msg("reserving stock")

		if err := c.stock.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
			log.Info().Str("product_id", line.ProductID).Err(err).Msg("stock reservation failed")
			c.compensate(ctx, log, comps)
			return zero, err
		}
		comps = append(comps, compensation{
			resource: "stock",
			target:   line.ProductID,
			quantity: line.Quantity,
			action: func(ctx context.Context) error {
				return c.stock.ReleaseStock(ctx, line.ProductID, line.Quantity)
			},
		})
	}
	state = stateStockDone

	now := time.Now()
	order := domain.Order{
		Number:        uuid.NewString(),
		UserID:        in.UserID,
		Status:        domain.OrderStatusPending,
		Totals:        totals,
		Shipping:      in.Shipping,
		PaymentMethod: in.PaymentMethod,
		CouponCode:    in.CouponCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	orderID, err := c.orders.CreateOrder(ctx, order)
	if err != nil {
		log.Error().Err(err).Msg("order write failed")
		c.compensate(ctx, log, comps)
		return zero, &domain.OrderWriteError{Step: "order", Err: err}
	}
	state = stateOrderWritten
	log.Debug().Str("state", string(state)).Int64("order_id", orderID).Msg("order aggregate written")

	orderLines := toOrderLines(in.Lines)
	if err := c.orders.CreateOrderLines(ctx, orderID, orderLines); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("order lines write failed")
		c.compensate(ctx, log, comps)
		// The aggregate row cannot be deleted without disturbing order
		// numbering; flag it so reconciliation finds the orphan.
		if flagErr := c.orders.FlagForReview(ctx, orderID, "order lines write failed"); flagErr != nil {
			log.Error().Err(flagErr).Int64("order_id", orderID).Msg("failed to flag orphaned order")
		}
		return zero, &domain.OrderWriteError{Step: "order_lines", Err: err}
	}
	state = stateItemsWritten
	log.Debug().Str("state", string(state)).Int64("order_id", orderID).Msg("order lines written")

	// Commit point. The order is real from here on; nothing past this line
	// is compensated, whatever fails.
	state = stateCommitted
	log.Info().Str("state", string(state)).Int64("order_id", orderID).
		Str("order_number", order.Number).Int64("total", totals.Total).
		Msg("order committed")

	if c.after != nil {
		c.after.Dispatch(ctx, OrderSnapshot{
			OrderID:        orderID,
			OrderNumber:    order.Number,
			UserID:         in.UserID,
			Total:          totals.Total,
			LoyaltyApplied: totals.LoyaltyDiscount,
			Lines:          orderLines,
		})
	}

	return domain.CheckoutResult{
		OrderID:     orderID,
		OrderNumber: order.Number,
		Totals:      totals,
	}, nil
}

// compensate drains the compensation set in reverse insertion order. A failed
// release is logged and counted but never interrupts the drain; there is no
// further compensation for a failed compensation.
func (c *Checkout) compensate(ctx context.Context, log zerolog.Logger, comps []compensation) {
	log.Debug().Str("state", string(stateCompensating)).Int("pending", len(comps)).Msg("draining compensation set")
	for i := len(comps) - 1; i >= 0; i-- {
		comp := comps[i]
		if c.metrics != nil {
			c.metrics.Compensations.WithLabelValues(comp.resource).Inc()
		}
		if err := comp.action(ctx); err != nil {
			if c.metrics != nil {
				c.metrics.CompensationFailures.WithLabelValues(comp.resource).Inc()
			}
			log.Error().Str("resource", comp.resource).Str("target", comp.target).
				Int("quantity", comp.quantity).Err(err).
				Msg("compensation failed; resource left over-reserved")
			continue
		}
		log.Warn().Str("resource", comp.resource).Str("target", comp.target).
			Int("quantity", comp.quantity).Msg("compensated")
	}
	log.Debug().Str("state", string(stateAborted)).Msg("saga aborted")
}

func (c *Checkout) observe(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "committed"
	if err != nil {
		outcome = domain.ErrorKind(err)
	}
	c.metrics.Sagas.WithLabelValues(outcome).Inc()
	c.metrics.DurationMS.Observe(float64(elapsed.Milliseconds()))
}

func validateInput(in PlaceOrderInput) error {
	if in.UserID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	if len(in.Lines) == 0 {
		return &domain.ValidationError{Field: "lines", Reason: "cart is empty"}
	}
	for _, l := range in.Lines {
		if l.ProductID == "" {
			return &domain.ValidationError{Field: "lines", Reason: "product id is required"}
		}
		if l.Quantity <= 0 {
			return &domain.ValidationError{Field: "lines", Reason: fmt.Sprintf("quantity for %s must be positive", l.ProductID)}
		}
		if l.UnitPrice < 0 {
			return &domain.ValidationError{Field: "lines", Reason: fmt.Sprintf("price for %s must not be negative", l.ProductID)}
		}
	}
	if in.Shipping.Name == "" || in.Shipping.Street == "" || in.Shipping.City == "" {
		return &domain.ValidationError{Field: "shipping", Reason: "name, street and city are required"}
	}
	if in.Pricing.LoyaltyPoints < 0 {
		return &domain.ValidationError{Field: "loyalty_points", Reason: "must not be negative"}
	}
	return nil
}

func toOrderLines(lines []domain.CartLine) []domain.OrderLine {
	out := make([]domain.OrderLine, len(lines))
	for i, l := range lines {
		out[i] = domain.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Variant:   l.Variant,
		}
	}
	return out
}
