// Package events publishes storefront lifecycle events for downstream
// consumers (analytics, fulfilment notifications). Publishing is best-effort:
// a lost event never fails the order that produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

const orderTopic = "storefront-orders"

type OrderEvent struct {
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	TotalAmount   float64              `json:"total_amount"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	OfferCode     string               `json:"offer_code,omitempty"`
	PlacedAt      time.Time            `json:"placed_at"`
}

// Publisher writes order events to Kafka.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *domain.Order)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  orderTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) OrderPlaced(ctx context.Context, order *domain.Order) {
	event := OrderEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		OfferCode:     order.OfferCode,
		PlacedAt:      time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		slog.Warn("order event marshal failed", "order_id", order.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(order.UserID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Warn("order event publish failed", "order_id", order.ID, "error", err)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, *domain.Order) {}
func (NopPublisher) Close() error                               { return nil }
