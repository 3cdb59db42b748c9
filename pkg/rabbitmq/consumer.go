/**
 * @description
 * Drain-style RabbitMQ consumer. Unlike a push consumer that listens
 * forever, Drain pulls whatever is currently queued and stops, which suits
 * a worker that wakes on a schedule, replays pending work, and goes back to
 * sleep.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The Go client for RabbitMQ.
 */
package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer holds the connection and channel for RabbitMQ.
type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewConsumer connects to RabbitMQ and returns a Consumer.
func NewConsumer(amqpURL string) (*Consumer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch}, nil
}

// Drain declares the exchange/queue/binding, then pulls messages until the
// queue is empty. The handler returns true to acknowledge a message and
// false to requeue it for a later drain. Requeued messages end the drain so
// a persistently failing task cannot spin the worker.
func (c *Consumer) Drain(exchange, queueName, routingKey string, handler func(body []byte) bool) (int, error) {
	err := c.ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return 0, err
	}

	q, err := c.ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return 0, err
	}

	if err := c.ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return 0, err
	}

	processed := 0
	for {
		msg, ok, err := c.ch.Get(q.Name, false) // manual ack
		if err != nil {
			return processed, err
		}
		if !ok {
			return processed, nil
		}
		if handler(msg.Body) {
			if err := msg.Ack(false); err != nil {
				return processed, err
			}
			processed++
			continue
		}
		if err := msg.Nack(false, true); err != nil {
			return processed, err
		}
		return processed, nil
	}
}

// Close gracefully closes the channel and connection.
func (c *Consumer) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
