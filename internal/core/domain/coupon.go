package domain

import "time"

// Coupon is a catalog-supplied snapshot of a coupon's rules. The snapshot is
// used only for fast-fail pre-validation; the data store re-checks every rule
// atomically when a usage unit is consumed.
type Coupon struct {
	Code       string
	Percent    float64
	Active     bool
	ValidFrom  time.Time
	ValidTo    time.Time
	MinOrder   int64
	UsageLimit int
}

// UsableAt reports whether the coupon is active and inside its validity
// window at the given instant.
func (c Coupon) UsableAt(now time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidTo.IsZero() && now.After(c.ValidTo) {
		return false
	}
	return true
}
