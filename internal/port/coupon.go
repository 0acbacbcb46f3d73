package port

import (
	"context"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// CouponDirectory looks up the catalog's snapshot of a coupon's rules, used
// for fast-fail pre-validation before any mutating call.
type CouponDirectory interface {
	// LookupCoupon returns *domain.CouponError with reason NotFound when the
	// code is unknown.
	LookupCoupon(ctx context.Context, code string) (domain.Coupon, error)
}

// CouponReserver wraps the atomic coupon usage procedures. The store re-checks
// every rule (active, validity window, usage limit, minimum order) under its
// own atomicity when consuming a unit; that check is authoritative even when
// pre-validation already passed.
type CouponReserver interface {
	// ReserveCoupon atomically consumes one usage unit. Returns
	// *domain.CouponError on any rule failure; no usage is consumed in that
	// case.
	ReserveCoupon(ctx context.Context, code string, orderSubtotal int64) error

	// ReleaseCoupon returns one usage unit. Not idempotent; callers must
	// issue it exactly once per successful ReserveCoupon.
	ReleaseCoupon(ctx context.Context, code string) error
}
