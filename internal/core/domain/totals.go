package domain

// TaxConfig is the admin-configured tax rule. When Inclusive is true the tax
// is already part of the listed prices and is reported but not added.
type TaxConfig struct {
	Enabled   bool
	Percent   float64
	Inclusive bool
}

type ShippingConfig struct {
	// FreeAbove is the subtotal at or above which shipping is free.
	FreeAbove int64
	FlatFee   int64
}

// Totals is the fully derived charge breakdown for one checkout. All amounts
// are whole rupees.
type Totals struct {
	Subtotal        int64
	Tax             int64
	TaxIncluded     bool
	Shipping        int64
	GiftWrap        int64
	CouponDiscount  int64
	LoyaltyDiscount int64
	Total           int64
}
