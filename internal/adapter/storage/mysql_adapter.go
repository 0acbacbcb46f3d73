package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

// MySQLAdapter persists orders. The aggregate insert and the line-item insert
// are deliberately separate statements with no shared transaction: the store
// model only guarantees single-statement atomicity, which is what the saga
// coordinator is built around.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (
			number, user_id, status, payment_method, coupon_code,
			subtotal, tax, tax_included, shipping, gift_wrap,
			coupon_discount, loyalty_discount, total,
			ship_name, ship_street, ship_city, ship_postal_code, ship_phone,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.Number, order.UserID, order.Status, order.PaymentMethod, order.CouponCode,
		order.Totals.Subtotal, order.Totals.Tax, order.Totals.TaxIncluded,
		order.Totals.Shipping, order.Totals.GiftWrap,
		order.Totals.CouponDiscount, order.Totals.LoyaltyDiscount, order.Totals.Total,
		order.Shipping.Name, order.Shipping.Street, order.Shipping.City,
		order.Shipping.PostalCode, order.Shipping.Phone,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}
	return id, nil
}

func (m *MySQLAdapter) CreateOrderLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(lines))
	args := make([]any, 0, len(lines)*5)
	for _, l := range lines {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
		args = append(args, orderID, l.ProductID, l.Quantity, l.UnitPrice, l.Variant)
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price, variant)
		VALUES `+strings.Join(placeholders, ", "), args...)
	if err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) FlagForReview(ctx context.Context, orderID int64, reason string) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, review_reason = ?, updated_at = NOW()
		WHERE id = ?`,
		domain.OrderStatusNeedsReview, reason, orderID,
	)
	if err != nil {
		return fmt.Errorf("flag order %d for review: %w", orderID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("flag order %d for review: no such order", orderID)
	}
	return nil
}

// GetOrder reads an aggregate back. Returns nil when the id is unknown.
func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var o domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, status, payment_method, coupon_code,
			subtotal, tax, tax_included, shipping, gift_wrap,
			coupon_discount, loyalty_discount, total,
			ship_name, ship_street, ship_city, ship_postal_code, ship_phone,
			created_at, updated_at
		FROM orders WHERE id = ?`, orderID,
	).Scan(
		&o.ID, &o.Number, &o.UserID, &o.Status, &o.PaymentMethod, &o.CouponCode,
		&o.Totals.Subtotal, &o.Totals.Tax, &o.Totals.TaxIncluded,
		&o.Totals.Shipping, &o.Totals.GiftWrap,
		&o.Totals.CouponDiscount, &o.Totals.LoyaltyDiscount, &o.Totals.Total,
		&o.Shipping.Name, &o.Shipping.Street, &o.Shipping.City,
		&o.Shipping.PostalCode, &o.Shipping.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order %d: %w", orderID, err)
	}
	return &o, nil
}
