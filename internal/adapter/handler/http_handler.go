package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/core/service"
)

// CheckoutPlacer is the slice of the checkout service the handler needs.
type CheckoutPlacer interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (domain.CheckoutResult, error)
}

type HTTPHandler struct {
	checkout CheckoutPlacer
	pricing  service.PricingConfig
}

func NewHTTPHandler(checkout CheckoutPlacer, pricing service.PricingConfig) *HTTPHandler {
	return &HTTPHandler{checkout: checkout, pricing: pricing}
}

type CheckoutLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Variant   string `json:"variant,omitempty"`
}

type ShippingRequest struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

type CheckoutHTTPRequest struct {
	RequestID     string                `json:"request_id"`
	UserID        string                `json:"user_id"`
	Lines         []CheckoutLineRequest `json:"lines"`
	Shipping      ShippingRequest       `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
	CouponCode    string                `json:"coupon_code,omitempty"`
	GiftWrap      bool                  `json:"gift_wrap,omitempty"`
	LoyaltyPoints int64                 `json:"loyalty_points,omitempty"`
}

type CheckoutHTTPResponse struct {
	Outcome     string         `json:"outcome"`
	OrderID     int64          `json:"order_id,omitempty"`
	OrderNumber string         `json:"order_number,omitempty"`
	Totals      *domain.Totals `json:"totals,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty"`
	Message     string         `json:"message,omitempty"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CheckoutHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{
			Outcome:   "aborted",
			ErrorKind: "validation",
			Message:   "invalid request body",
		})
		return
	}

	pricing := h.pricing
	pricing.GiftWrap = req.GiftWrap
	pricing.LoyaltyPoints = req.LoyaltyPoints

	lines := make([]domain.CartLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Variant:   l.Variant,
		}
	}

	result, err := h.checkout.PlaceOrder(r.Context(), service.PlaceOrderInput{
		RequestID:     req.RequestID,
		UserID:        req.UserID,
		Lines:         lines,
		Shipping:      toShippingAddress(req.Shipping),
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Pricing:       pricing,
	})
	if err != nil {
		writeJSON(w, statusFor(err), CheckoutHTTPResponse{
			Outcome:   "aborted",
			ErrorKind: domain.ErrorKind(err),
			Message:   userMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutHTTPResponse{
		Outcome:     "committed",
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Totals:      &result.Totals,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch domain.ErrorKind(err) {
	case "validation":
		return http.StatusBadRequest
	case "duplicate":
		return http.StatusConflict
	case "coupon":
		return http.StatusUnprocessableEntity
	case "stock":
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// userMessage keeps typed checkout errors verbatim (they are written for the
// shopper) and hides everything else.
func userMessage(err error) string {
	var ve *domain.ValidationError
	var ce *domain.CouponError
	var se *domain.StockError
	switch {
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "this checkout was already submitted"
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &se):
		return err.Error()
	case domain.ErrorKind(err) == "order_write":
		return "we could not place your order; nothing was charged or reserved"
	}
	return "internal error"
}

func toShippingAddress(s ShippingRequest) domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:       s.Name,
		Street:     s.Street,
		City:       s.City,
		PostalCode: s.PostalCode,
		Phone:      s.Phone,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
