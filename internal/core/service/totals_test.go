package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

func cart(total int64) []domain.CartLine {
	return []domain.CartLine{{ProductID: "p1", Quantity: 1, UnitPrice: total}}
}

func TestCalculateTotals_ExclusiveTax(t *testing.T) {
	got := CalculateTotals(cart(1000), PricingConfig{
		Tax: domain.TaxConfig{Enabled: true, Percent: 18},
	})

	assert.Equal(t, int64(1000), got.Subtotal)
	assert.Equal(t, int64(180), got.Tax)
	assert.False(t, got.TaxIncluded)
	assert.Equal(t, int64(1180), got.Total)
}

func TestCalculateTotals_InclusiveTax(t *testing.T) {
	got := CalculateTotals(cart(1180), PricingConfig{
		Tax: domain.TaxConfig{Enabled: true, Percent: 18, Inclusive: true},
	})

	// 1180 - 1180/1.18 = 180, displayed as included, never added.
	assert.Equal(t, int64(180), got.Tax)
	assert.True(t, got.TaxIncluded)
	assert.Equal(t, int64(1180), got.Total)
}

func TestCalculateTotals_TaxRounding(t *testing.T) {
	got := CalculateTotals(cart(999), PricingConfig{
		Tax: domain.TaxConfig{Enabled: true, Percent: 18},
	})

	// 999 * 0.18 = 179.82, rounded at its own step.
	assert.Equal(t, int64(180), got.Tax)
	assert.Equal(t, int64(1179), got.Total)
}

func TestCalculateTotals_ShippingThreshold(t *testing.T) {
	cfg := PricingConfig{
		Shipping: domain.ShippingConfig{FreeAbove: 1000, FlatFee: 99},
	}

	below := CalculateTotals(cart(999), cfg)
	assert.Equal(t, int64(99), below.Shipping)
	assert.Equal(t, int64(1098), below.Total)

	at := CalculateTotals(cart(1000), cfg)
	assert.Equal(t, int64(0), at.Shipping)
}

func TestCalculateTotals_CouponAndGiftWrap(t *testing.T) {
	got := CalculateTotals(cart(2000), PricingConfig{
		Shipping:      domain.ShippingConfig{FreeAbove: 1000, FlatFee: 99},
		GiftWrap:      true,
		GiftWrapFee:   30,
		CouponPercent: 10,
	})

	assert.Equal(t, int64(200), got.CouponDiscount)
	assert.Equal(t, int64(30), got.GiftWrap)
	assert.Equal(t, int64(1830), got.Total)
}

func TestCalculateTotals_LoyaltyCappedAtPayable(t *testing.T) {
	got := CalculateTotals(cart(100), PricingConfig{
		Shipping:      domain.ShippingConfig{FreeAbove: 1000, FlatFee: 50},
		LoyaltyPoints: 500,
	})

	assert.Equal(t, int64(150), got.LoyaltyDiscount)
	assert.Equal(t, int64(0), got.Total)
}

func TestCalculateTotals_Deterministic(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", Quantity: 3, UnitPrice: 333},
		{ProductID: "p2", Quantity: 1, UnitPrice: 77},
	}
	cfg := PricingConfig{
		Tax:           domain.TaxConfig{Enabled: true, Percent: 18},
		Shipping:      domain.ShippingConfig{FreeAbove: 1000, FlatFee: 99},
		CouponPercent: 12.5,
		LoyaltyPoints: 40,
	}

	assert.Equal(t, CalculateTotals(lines, cfg), CalculateTotals(lines, cfg))
}
