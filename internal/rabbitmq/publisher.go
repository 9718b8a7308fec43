package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// Publisher publishes messages to the notifications exchange.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher wraps a channel for publishing.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishResetEmail enqueues one password-reset message.
func (p *Publisher) PublishResetEmail(_ context.Context, msg models.ResetEmail) error {
	return PublishMessage(p.ch, Exchange, ResetRoutingKey, msg)
}

// PublishMessage publishes a persistent JSON message.
func PublishMessage(ch *amqp.Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
