package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits payment outcome events so rider dispatch and notification
// services can react without polling the orders table.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues so publish never fails due to missing infra
	_, err = ch.QueueDeclare(PaymentSucceededQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", PaymentSucceededQueue, err)
	}
	_, err = ch.QueueDeclare(PaymentFailedQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", PaymentFailedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishPaymentSucceeded(ctx context.Context, orderID, reference string, amount int64, channel string) error {
	ev := PaymentSucceeded{
		EventType: EventTypePaymentSucceeded,
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Reference: reference,
		Amount:    amount,
		Channel:   channel,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal PaymentSucceeded: %w", err)
	}
	return p.publishJSON(ctx, PaymentSucceededQueue, body)
}

func (p *Publisher) PublishPaymentFailed(ctx context.Context, orderID, reference, reason string) error {
	ev := PaymentFailed{
		EventType: EventTypePaymentFailed,
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Reference: reference,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal PaymentFailed: %w", err)
	}
	return p.publishJSON(ctx, PaymentFailedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
