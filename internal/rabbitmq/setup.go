package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange is the direct exchange carrying notification messages.
const Exchange = "notifications"

// ResetRoutingKey routes password-reset messages.
const ResetRoutingKey = "password_reset"

// SetupChannel opens a channel, declares the exchange and binds the reset
// queue to it. Safe to call from both the publisher and the consumer side.
func SetupChannel(conn *amqp.Connection, resetQueue string) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		resetQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, resetQueue, err)
	}

	err = ch.QueueBind(resetQueue, ResetRoutingKey, Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, resetQueue, err)
	}

	return ch, nil
}
