package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/anirudhm/vastra-checkout/internal/adapter/storage"
	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/core/service"
	"github.com/anirudhm/vastra-checkout/pkg/logging"
	"github.com/anirudhm/vastra-checkout/pkg/metrics"
)

// Fires concurrent checkouts at a single product to demonstrate that the
// atomic reserve procedure never oversells, whatever the contention.
const (
	redisAddr     = "localhost:6379"
	mysqlDSN      = "root:root@tcp(localhost:3306)/vastra?parseTime=true"
	productID     = "kurta-classic-m"
	initialStock  = 20
	totalRequests = 50
	unitPrice     = 1499
)

func main() {
	ctx := context.Background()
	logger := logging.New("loadgen")

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}

	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	// Reset the product under test.
	if err := redisAdapter.SetStock(ctx, productID, initialStock); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed stock")
	}

	coupons := service.NewCouponClient(redisAdapter, redisAdapter)
	checkout := service.NewCheckout(
		redisAdapter, coupons, mysqlAdapter, redisAdapter, nil,
		logger, metrics.NewSagaMetrics(prometheus.NewRegistry()))

	pricing := service.PricingConfig{
		Shipping: domain.ShippingConfig{FreeAbove: 1000, FlatFee: 99},
	}

	var committed, soldOut, failed atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := checkout.PlaceOrder(ctx, service.PlaceOrderInput{
				RequestID: fmt.Sprintf("loadgen-%d-%d", start.UnixNano(), n),
				UserID:    fmt.Sprintf("user-%d", n),
				Lines: []domain.CartLine{
					{ProductID: productID, Quantity: 1, UnitPrice: unitPrice, Variant: "M"},
				},
				Shipping: domain.ShippingAddress{
					Name:   fmt.Sprintf("Shopper %d", n),
					Street: "1 MG Road",
					City:   "Bengaluru",
				},
				PaymentMethod: "cod",
				Pricing:       pricing,
			})

			var se *domain.StockError
			switch {
			case err == nil:
				committed.Add(1)
			case errors.As(err, &se):
				soldOut.Add(1)
			default:
				failed.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== LOAD GENERATOR RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Committed:        %d\n", committed.Load())
	fmt.Printf("Sold Out:         %d\n", soldOut.Load())
	fmt.Printf("Other Failures:   %d\n", failed.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("============================================")

	finalStock, _ := redisAdapter.StockLevel(ctx, productID)
	fmt.Printf("Final Stock:      %d\n", finalStock)

	if int(committed.Load())+finalStock == initialStock && failed.Load() == 0 {
		fmt.Println("PASS: committed orders plus remaining stock equals initial stock")
	} else {
		fmt.Println("FAIL: stock accounting does not balance")
	}
}
