package service

import (
	"context"
	"time"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/port"
)

// CouponClient fronts the atomic coupon procedures with a local fast-fail
// check against the catalog snapshot. The local check only saves a round trip
// on obviously dead coupons; the store's own atomic re-check stays the source
// of truth, since another shopper may consume the last usage unit between the
// lookup and the reserve.
type CouponClient struct {
	directory port.CouponDirectory
	remote    port.CouponReserver
	now       func() time.Time
}

func NewCouponClient(directory port.CouponDirectory, remote port.CouponReserver) *CouponClient {
	return &CouponClient{directory: directory, remote: remote, now: time.Now}
}

// Reserve validates locally, then consumes one usage unit at the store.
// On success it returns the coupon's discount percent.
func (c *CouponClient) Reserve(ctx context.Context, code string, orderSubtotal int64) (float64, error) {
	coupon, err := c.directory.LookupCoupon(ctx, code)
	if err != nil {
		return 0, err
	}

	if !coupon.UsableAt(c.now()) {
		return 0, &domain.CouponError{Code: code, Reason: domain.CouponExpired}
	}
	if orderSubtotal < coupon.MinOrder {
		return 0, &domain.CouponError{Code: code, Reason: domain.CouponBelowMinimum}
	}

	if err := c.remote.ReserveCoupon(ctx, code, orderSubtotal); err != nil {
		return 0, err
	}
	return coupon.Percent, nil
}

// Release returns the usage unit consumed by a successful Reserve. The store
// procedure is not idempotent, so the coordinator calls this at most once per
// reservation.
func (c *CouponClient) Release(ctx context.Context, code string) error {
	return c.remote.ReleaseCoupon(ctx, code)
}
