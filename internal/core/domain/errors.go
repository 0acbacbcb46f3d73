package domain

import (
	"errors"
	"fmt"
)

var ErrDuplicateRequest = errors.New("duplicate checkout request")

// ValidationError rejects malformed input before the saga starts. Nothing has
// been reserved when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type CouponReason string

const (
	CouponNotFound     CouponReason = "not_found"
	CouponExpired      CouponReason = "expired"
	CouponLimitReached CouponReason = "limit_reached"
	CouponBelowMinimum CouponReason = "below_minimum"
)

type CouponError struct {
	Code   string
	Reason CouponReason
}

func (e *CouponError) Error() string {
	switch e.Reason {
	case CouponNotFound:
		return fmt.Sprintf("coupon %q does not exist", e.Code)
	case CouponExpired:
		return fmt.Sprintf("coupon %q is expired or not active", e.Code)
	case CouponLimitReached:
		return fmt.Sprintf("coupon %q has reached its usage limit", e.Code)
	case CouponBelowMinimum:
		return fmt.Sprintf("order does not meet the minimum value for coupon %q", e.Code)
	}
	return fmt.Sprintf("coupon %q cannot be applied", e.Code)
}

// StockError reports a failed stock reservation, naming the offending product
// and the requested vs. available quantities.
type StockError struct {
	ProductID string
	Requested int
	Available int
	NotFound  bool
}

func (e *StockError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("product %q is not stocked", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// OrderWriteError wraps a persistence failure from either of the two order
// writes. Everything reserved before it has already been compensated by the
// time the caller sees it.
type OrderWriteError struct {
	Step string // "order" or "order_lines"
	Err  error
}

func (e *OrderWriteError) Error() string {
	return fmt.Sprintf("order write failed at %s: %v", e.Step, e.Err)
}

func (e *OrderWriteError) Unwrap() error { return e.Err }

// ErrorKind maps a checkout error to the machine-readable kind reported to
// the caller.
func ErrorKind(err error) string {
	var ve *ValidationError
	var ce *CouponError
	var se *StockError
	var oe *OrderWriteError
	switch {
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &ce):
		return "coupon"
	case errors.As(err, &se):
		return "stock"
	case errors.As(err, &oe):
		return "order_write"
	}
	return "internal"
}
