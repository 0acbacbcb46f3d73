package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

func getMySQL(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/vastra?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return db
}

func testOrder() domain.Order {
	now := time.Now().Truncate(time.Second)
	return domain.Order{
		Number:        uuid.NewString(),
		UserID:        "test-user",
		Status:        domain.OrderStatusPending,
		PaymentMethod: "cod",
		CouponCode:    "SAVE10",
		Totals: domain.Totals{
			Subtotal:       1000,
			Tax:            180,
			Shipping:       0,
			CouponDiscount: 100,
			Total:          1080,
		},
		Shipping: domain.ShippingAddress{
			Name: "Asha Rao", Street: "12 Brigade Road", City: "Bengaluru",
			PostalCode: "560001", Phone: "9800000000",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateOrder_RoundTrip(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	order := testOrder()

	id, err := adapter.CreateOrder(ctx, order)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero order id")
	}

	got, err := adapter.GetOrder(ctx, id)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got == nil {
		t.Fatal("order not found after insert")
	}
	if got.Number != order.Number || got.Totals.Total != 1080 || got.Status != domain.OrderStatusPending {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestCreateOrderLines_InsertsAll(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	id, err := adapter.CreateOrder(ctx, testOrder())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	lines := []domain.OrderLine{
		{ProductID: "kurta-1", Quantity: 2, UnitPrice: 400, Variant: "M"},
		{ProductID: "dupatta-3", Quantity: 1, UnitPrice: 200, Variant: ""},
	}
	if err := adapter.CreateOrderLines(ctx, id, lines); err != nil {
		t.Fatalf("create order lines: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_lines WHERE order_id = ?`, id,
	).Scan(&count); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 lines, got %d", count)
	}
}

func TestFlagForReview_MarksOrphan(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	id, err := adapter.CreateOrder(ctx, testOrder())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := adapter.FlagForReview(ctx, id, "order lines write failed"); err != nil {
		t.Fatalf("flag for review: %v", err)
	}

	got, err := adapter.GetOrder(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != domain.OrderStatusNeedsReview {
		t.Errorf("expected status needs_review, got %s", got.Status)
	}
}

func TestFlagForReview_UnknownOrder(t *testing.T) {
	db := getMySQL(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)
	if err := adapter.FlagForReview(context.Background(), -1, "x"); err == nil {
		t.Error("expected an error for an unknown order id")
	}
}
