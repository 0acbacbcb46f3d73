package notifier

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/anirudhm/vastra-checkout/internal/port"
)

const (
	TopicOrderConfirmed = "order.confirmed"
	TopicInventoryAlert = "inventory.alert"
)

// KafkaNotifier publishes post-commit events. Delivery is best effort; the
// caller already treats notification failure as non-fatal.
type KafkaNotifier struct {
	confirmations *kafka.Writer
	alerts        *kafka.Writer
}

func NewKafkaNotifier(brokersCSV string) *KafkaNotifier {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return &KafkaNotifier{
		confirmations: newWriter(brokers, TopicOrderConfirmed),
		alerts:        newWriter(brokers, TopicInventoryAlert),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func (n *KafkaNotifier) OrderConfirmed(ctx context.Context, c port.OrderConfirmation) error {
	return publishJSON(ctx, n.confirmations, c.OrderNumber, c)
}

type lowStockAlert struct {
	ProductID string `json:"product_id"`
	Level     int    `json:"level"`
}

func (n *KafkaNotifier) LowStock(ctx context.Context, productID string, level int) error {
	return publishJSON(ctx, n.alerts, productID, lowStockAlert{ProductID: productID, Level: level})
}

func (n *KafkaNotifier) Close() error {
	cerr := n.confirmations.Close()
	if err := n.alerts.Close(); err != nil {
		return err
	}
	return cerr
}

func publishJSON(ctx context.Context, w *kafka.Writer, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

// LogNotifier is the stand-in used when no brokers are configured; it keeps
// the post-commit pipeline observable in development.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n *LogNotifier) OrderConfirmed(_ context.Context, c port.OrderConfirmation) error {
	n.Logger.Info().Str("order_number", c.OrderNumber).Int64("order_id", c.OrderID).
		Int64("total", c.Total).Msg("order confirmed")
	return nil
}

func (n *LogNotifier) LowStock(_ context.Context, productID string, level int) error {
	n.Logger.Warn().Str("product_id", productID).Int("level", level).Msg("low stock")
	return nil
}
