package service

import (
	"math"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// PricingConfig carries the admin-configured pricing rules plus the per-order
// adjustments the shopper selected.
type PricingConfig struct {
	Tax           domain.TaxConfig
	Shipping      domain.ShippingConfig
	GiftWrap      bool
	GiftWrapFee   int64
	CouponPercent float64
	// LoyaltyPoints is the rupee-equivalent the shopper chose to redeem.
	LoyaltyPoints int64
}

// CalculateTotals derives the full charge breakdown from a cart snapshot.
// Pure: no I/O, deterministic for identical inputs. Every derived amount is
// rounded to a whole rupee at its own step.
func CalculateTotals(lines []domain.CartLine, cfg PricingConfig) domain.Totals {
	t := domain.Totals{Subtotal: domain.Subtotal(lines)}

	if cfg.Tax.Enabled && cfg.Tax.Percent > 0 {
		sub := float64(t.Subtotal)
		if cfg.Tax.Inclusive {
			// Back out the tax share of the listed prices; displayed only.
			t.Tax = roundRupee(sub - sub/(1+cfg.Tax.Percent/100))
			t.TaxIncluded = true
		} else {
			t.Tax = roundRupee(sub * cfg.Tax.Percent / 100)
		}
	}

	if t.Subtotal < cfg.Shipping.FreeAbove {
		t.Shipping = cfg.Shipping.FlatFee
	}

	if cfg.GiftWrap {
		t.GiftWrap = cfg.GiftWrapFee
	}

	if cfg.CouponPercent > 0 {
		t.CouponDiscount = roundRupee(float64(t.Subtotal) * cfg.CouponPercent / 100)
	}

	total := t.Subtotal + t.Shipping + t.GiftWrap - t.CouponDiscount
	if !t.TaxIncluded {
		total += t.Tax
	}

	if cfg.LoyaltyPoints > 0 {
		t.LoyaltyDiscount = cfg.LoyaltyPoints
		if t.LoyaltyDiscount > total {
			t.LoyaltyDiscount = total
		}
		total -= t.LoyaltyDiscount
	}

	t.Total = total
	return t
}

func roundRupee(v float64) int64 {
	return int64(math.Round(v))
}
