package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/anirudhm/vastra-checkout/internal/adapter/handler"
	"github.com/anirudhm/vastra-checkout/internal/adapter/notifier"
	"github.com/anirudhm/vastra-checkout/internal/adapter/storage"
	"github.com/anirudhm/vastra-checkout/internal/core/domain"
	"github.com/anirudhm/vastra-checkout/internal/core/service"
	"github.com/anirudhm/vastra-checkout/internal/port"
	"github.com/anirudhm/vastra-checkout/pkg/logging"
	"github.com/anirudhm/vastra-checkout/pkg/metrics"
)

type config struct {
	HTTPAddr       string
	MySQLDSN       string
	RedisAddr      string
	KafkaBrokers   string
	TaxPercent     float64
	TaxInclusive   bool
	FreeShipAbove  int64
	ShippingFee    int64
	GiftWrapFee    int64
	LoyaltyEnabled bool
	LowStockAt     int
}

func readConfig() config {
	taxPercent, _ := strconv.ParseFloat(getenv("TAX_PERCENT", "18"), 64)
	freeAbove, _ := strconv.ParseInt(getenv("FREE_SHIPPING_ABOVE", "1000"), 10, 64)
	shipFee, _ := strconv.ParseInt(getenv("SHIPPING_FEE", "99"), 10, 64)
	wrapFee, _ := strconv.ParseInt(getenv("GIFT_WRAP_FEE", "30"), 10, 64)
	lowStock, _ := strconv.Atoi(getenv("LOW_STOCK_THRESHOLD", "5"))

	return config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:       getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/vastra?parseTime=true"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		TaxPercent:     taxPercent,
		TaxInclusive:   getenv("TAX_INCLUSIVE", "false") == "true",
		FreeShipAbove:  freeAbove,
		ShippingFee:    shipFee,
		GiftWrapFee:    wrapFee,
		LoyaltyEnabled: getenv("LOYALTY_ENABLED", "true") == "true",
		LowStockAt:     lowStock,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := readConfig()
	logger := logging.New("checkout")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mysql")
	}
	logger.Info().Msg("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	logger.Info().Msg("connected to redis")

	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	var events port.Notifier
	kafkaNotifier := notifier.NewKafkaNotifier(cfg.KafkaBrokers)
	if kafkaNotifier != nil {
		events = kafkaNotifier
		logger.Info().Str("brokers", cfg.KafkaBrokers).Msg("kafka notifier enabled")
	} else {
		events = &notifier.LogNotifier{Logger: logger}
		logger.Info().Msg("no kafka brokers configured; logging notifications")
	}

	sagaMetrics := metrics.NewSagaMetrics(prometheus.DefaultRegisterer)
	postCommit := service.NewPostCommit(
		redisAdapter, events, redisAdapter, logger, cfg.LoyaltyEnabled, cfg.LowStockAt)
	coupons := service.NewCouponClient(redisAdapter, redisAdapter)
	checkout := service.NewCheckout(
		redisAdapter, coupons, mysqlAdapter, redisAdapter, postCommit, logger, sagaMetrics)

	pricing := service.PricingConfig{
		Tax: domain.TaxConfig{
			Enabled:   cfg.TaxPercent > 0,
			Percent:   cfg.TaxPercent,
			Inclusive: cfg.TaxInclusive,
		},
		Shipping: domain.ShippingConfig{
			FreeAbove: cfg.FreeShipAbove,
			FlatFee:   cfg.ShippingFee,
		},
		GiftWrapFee: cfg.GiftWrapFee,
	}

	httpHandler := handler.NewHTTPHandler(checkout, pricing)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/checkout", httpHandler.Checkout)
	mux.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	if kafkaNotifier != nil {
		kafkaNotifier.Close()
	}
	rdb.Close()
	db.Close()
	logger.Info().Msg("connections closed")
}
