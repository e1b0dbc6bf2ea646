package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/shoplabs/shopcore/internal/service/models/order"
)

// Publisher emits order lifecycle events. Delivery is best effort: callers
// log and move on when publishing fails.
type Publisher struct {
	client   *Client
	exchange string
}

// NewPublisher declares the order events exchange and returns a publisher
// bound to it.
func NewPublisher(client *Client) (*Publisher, error) {
	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		exchange = "order.events"
	}

	if err := client.Channel().ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{client: client, exchange: exchange}, nil
}

type orderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount string    `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	OrderDate   time.Time `json:"orderDate"`
}

type orderStatusChangedEvent struct {
	OrderID   string       `json:"orderId"`
	UserID    string       `json:"userId"`
	From      order.Status `json:"from"`
	To        order.Status `json:"to"`
	ChangedAt time.Time    `json:"changedAt"`
}

// PublishOrderCreated emits order.created.
func (p *Publisher) PublishOrderCreated(o *order.Order) error {
	return p.publish("order.created", orderCreatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount.String(),
		ItemCount:   len(o.Items),
		OrderDate:   o.OrderDate,
	})
}

// PublishOrderStatusChanged emits order.status_changed.
func (p *Publisher) PublishOrderStatusChanged(o *order.Order, from order.Status) error {
	return p.publish("order.status_changed", orderStatusChangedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		From:      from,
		To:        o.Status,
		ChangedAt: o.UpdatedAt,
	})
}

func (p *Publisher) publish(routingKey string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}

	return p.client.Channel().Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}
