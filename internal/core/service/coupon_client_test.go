package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// countingReserver counts remote calls so prevalidation can be shown to
// short-circuit before the network.
type countingReserver struct {
	*fakeCoupons
	reserveCalls int
}

func (c *countingReserver) ReserveCoupon(ctx context.Context, code string, orderSubtotal int64) error {
	c.reserveCalls++
	return c.fakeCoupons.ReserveCoupon(ctx, code, orderSubtotal)
}

func newCouponFixture(c domain.Coupon) (*CouponClient, *countingReserver) {
	store := newFakeCoupons(&opLog{}, c)
	remote := &countingReserver{fakeCoupons: store}
	return NewCouponClient(store, remote), remote
}

func TestCouponReserve_Success(t *testing.T) {
	client, remote := newCouponFixture(domain.Coupon{
		Code: "SAVE10", Percent: 10, Active: true, MinOrder: 500, UsageLimit: 3,
	})

	percent, err := client.Reserve(context.Background(), "SAVE10", 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if percent != 10 {
		t.Errorf("expected percent 10, got %g", percent)
	}
	if remote.reserveCalls != 1 {
		t.Errorf("expected 1 remote call, got %d", remote.reserveCalls)
	}
	if remote.usage("SAVE10") != 1 {
		t.Errorf("expected usage 1, got %d", remote.usage("SAVE10"))
	}
}

func TestCouponReserve_ExpiredFailsBeforeRemote(t *testing.T) {
	client, remote := newCouponFixture(domain.Coupon{
		Code: "OLD", Percent: 10, Active: true,
		ValidTo: time.Now().Add(-24 * time.Hour),
	})

	_, err := client.Reserve(context.Background(), "OLD", 800)

	var ce *domain.CouponError
	if !errors.As(err, &ce) || ce.Reason != domain.CouponExpired {
		t.Fatalf("expected expired CouponError, got %v", err)
	}
	if remote.reserveCalls != 0 {
		t.Errorf("local check must fail before the remote call, got %d calls", remote.reserveCalls)
	}
}

func TestCouponReserve_BelowMinimumFailsBeforeRemote(t *testing.T) {
	client, remote := newCouponFixture(domain.Coupon{
		Code: "BIG50", Percent: 50, Active: true, MinOrder: 5000,
	})

	_, err := client.Reserve(context.Background(), "BIG50", 1200)

	var ce *domain.CouponError
	if !errors.As(err, &ce) || ce.Reason != domain.CouponBelowMinimum {
		t.Fatalf("expected below-minimum CouponError, got %v", err)
	}
	if remote.reserveCalls != 0 {
		t.Errorf("local check must fail before the remote call, got %d calls", remote.reserveCalls)
	}
}

func TestCouponReserve_RemoteCheckIsAuthoritative(t *testing.T) {
	// Snapshot passes locally but the store's counter is already at the
	// limit, as happens when a concurrent shopper takes the last unit.
	client, remote := newCouponFixture(domain.Coupon{
		Code: "LAST1", Percent: 10, Active: true, UsageLimit: 1,
	})
	if err := remote.fakeCoupons.ReserveCoupon(context.Background(), "LAST1", 100); err != nil {
		t.Fatalf("seeding usage: %v", err)
	}

	_, err := client.Reserve(context.Background(), "LAST1", 800)

	var ce *domain.CouponError
	if !errors.As(err, &ce) || ce.Reason != domain.CouponLimitReached {
		t.Fatalf("expected limit-reached CouponError, got %v", err)
	}
	if remote.reserveCalls != 1 {
		t.Errorf("remote must have been consulted, got %d calls", remote.reserveCalls)
	}
	if remote.usage("LAST1") != 1 {
		t.Errorf("failed remote reserve must not consume usage, got %d", remote.usage("LAST1"))
	}
}

func TestCouponReserve_NotFound(t *testing.T) {
	client, remote := newCouponFixture(domain.Coupon{Code: "REAL", Active: true})

	_, err := client.Reserve(context.Background(), "NOPE", 800)

	var ce *domain.CouponError
	if !errors.As(err, &ce) || ce.Reason != domain.CouponNotFound {
		t.Fatalf("expected not-found CouponError, got %v", err)
	}
	if remote.reserveCalls != 0 {
		t.Errorf("unknown code must fail at lookup, got %d calls", remote.reserveCalls)
	}
}

func TestCouponRelease_RestoresUsage(t *testing.T) {
	client, remote := newCouponFixture(domain.Coupon{
		Code: "SAVE10", Percent: 10, Active: true, UsageLimit: 3,
	})

	if _, err := client.Reserve(context.Background(), "SAVE10", 800); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := client.Release(context.Background(), "SAVE10"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if remote.usage("SAVE10") != 0 {
		t.Errorf("expected usage back to 0, got %d", remote.usage("SAVE10"))
	}
}
