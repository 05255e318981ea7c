// Package events publishes order lifecycle events to Kafka for downstream
// consumers (kitchen display, analytics). Publishing is best-effort from the
// caller's point of view: an order is accepted even if its event is lost.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/tbourn/sushi-order-bot/internal/domain"
)

// TypeOrderCreated is the event type of a newly accepted order.
const TypeOrderCreated = "order.created"

// OrderItem is one item line inside an event.
type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderCreated is the payload written for each accepted order.
type OrderCreated struct {
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Items     []OrderItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events keyed by order id, so every event of
// one order lands on the same partition.
type KafkaPublisher struct {
	Writer   MessageWriter
	Currency string
}

// NewKafkaPublisher returns a publisher over writer.
func NewKafkaPublisher(writer MessageWriter, currency string) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer, Currency: currency}
}

// NewWriter builds a synchronous writer for topic on brokers.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

// OrderCreatedEvent maps o to its event payload.
func OrderCreatedEvent(o *domain.Order, currency string) OrderCreated {
	ev := OrderCreated{
		Type:      TypeOrderCreated,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Total:     o.Total,
		Currency:  currency,
		Items:     make([]OrderItem, 0, len(o.Items)),
		CreatedAt: o.CreatedAt.UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderItem{Name: it.ItemName, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}

// PublishOrderCreated writes the order.created event for o. A nil publisher
// or writer is a no-op.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	if p == nil || p.Writer == nil {
		return nil
	}
	payload, err := json.Marshal(OrderCreatedEvent(o, p.Currency))
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeOrderCreated)},
		},
	})
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
