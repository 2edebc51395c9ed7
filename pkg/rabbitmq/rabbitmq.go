package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gnsons/pkg/mailer"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// NotificationQueue carries outgoing transactional email.
const NotificationQueue = "notification_queue"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// mu serialises publishes; request goroutines share the channel.
	mu  sync.Mutex
	log *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// notification queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		NotificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", NotificationQueue, err)
	}

	log.Info("RabbitMQ client connected", zap.String("queue", NotificationQueue))
	return &Client{conn: conn, channel: ch, log: log}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Notify queues msg for delivery by a consumer. It satisfies services.Notifier,
// so a successful return means the broker accepted the message, not that the
// email was sent.
func (c *Client) Notify(_ context.Context, msg mailer.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	err = c.channel.Publish(
		"",                // exchange: default exchange
		NotificationQueue, // routing key: the queue name
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	c.log.Debug("Notification queued", zap.String("subject", msg.Subject))
	return nil
}

// DecodeNotification parses a queued message body.
func DecodeNotification(body []byte) (mailer.Message, error) {
	var msg mailer.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("malformed notification: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return msg, fmt.Errorf("invalid notification: %w", err)
	}
	return msg, nil
}

// Disposition is what the consumer does with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	Requeue
	Drop
)

// Dispose decides the fate of a delivery. Messages that cannot be decoded are
// dropped; a failed delivery is retried once and then dropped.
func Dispose(decodeErr, deliverErr error, redelivered bool) Disposition {
	switch {
	case decodeErr != nil:
		return Drop
	case deliverErr == nil:
		return Ack
	case redelivered:
		return Drop
	default:
		return Requeue
	}
}

// ConsumeNotifications delivers queued messages with deliver until ctx is
// cancelled or the channel closes. It blocks.
func (c *Client) ConsumeNotifications(ctx context.Context, deliver func(context.Context, mailer.Message) error) error {
	msgs, err := c.channel.Consume(
		NotificationQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("Waiting for notifications", zap.String("queue", NotificationQueue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d, deliver)
		}
	}
}

func (c *Client) handle(ctx context.Context, d amqp.Delivery, deliver func(context.Context, mailer.Message) error) {
	msg, decodeErr := DecodeNotification(d.Body)
	var deliverErr error
	if decodeErr == nil {
		deliverErr = deliver(ctx, msg)
	}

	var ackErr error
	switch Dispose(decodeErr, deliverErr, d.Redelivered) {
	case Ack:
		ackErr = d.Ack(false)
	case Requeue:
		c.log.Warn("Notification delivery failed, requeueing", zap.Uint64("tag", d.DeliveryTag), zap.Error(deliverErr))
		ackErr = d.Nack(false, true)
	case Drop:
		c.log.Error("Dropping notification",
			zap.Uint64("tag", d.DeliveryTag), zap.NamedError("decode_error", decodeErr), zap.NamedError("deliver_error", deliverErr))
		ackErr = d.Nack(false, false)
	}
	if ackErr != nil {
		c.log.Error("Failed to settle delivery", zap.Uint64("tag", d.DeliveryTag), zap.Error(ackErr))
	}
}
