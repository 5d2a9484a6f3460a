// Package activity publishes storefront activity (logins, cart changes,
// orders) for downstream consumers.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const DefaultTopic = "storefront_events"

type Type string

const (
	Login       Type = "login"
	Logout      Type = "logout"
	CartAdd     Type = "cart_add"
	CartUpdate  Type = "cart_update"
	CartRemove  Type = "cart_remove"
	CartClear   Type = "cart_clear"
	OrderPlaced Type = "order_placed"
)

type Event struct {
	Type      Type             `json:"type"`
	VisitorID string           `json:"visitor_id"`
	UserID    string           `json:"user_id,omitempty"`
	ProductID string           `json:"product_id,omitempty"`
	Quantity  int              `json:"quantity,omitempty"`
	OrderID   string           `json:"order_id,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	At        time.Time        `json:"at"`
}

// Key groups a visitor's events on one partition.
func (e Event) Key() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.VisitorID
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w       messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		timeout: 5 * time.Second,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(e.Key()), Value: data}); err != nil {
		return fmt.Errorf("kafka: delivery failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// EnsureTopic creates topic on the cluster controller if it is missing.
func EnsureTopic(broker, topic string, partitions int) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("kafka: dial: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka: controller: %w", err)
	}
	admin, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("kafka: dial controller: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: partitions, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka: create topic: %w", err)
	}
	return nil
}
