package messagequeue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrConsumerClosed is returned by Consume when the broker closes the delivery channel.
var ErrConsumerClosed = errors.New("consumer channel closed")

// RabbitMQService implements the MessageQueue interface using RabbitMQ.
type RabbitMQService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewRabbitMQServiceConfig contains options for creating a new RabbitMQService.
type NewRabbitMQServiceConfig struct {
	URL string
	// Prefetch bounds the number of unacknowledged deliveries per consumer.
	Prefetch int
}

// NewRabbitMQService creates a new instance of RabbitMQService.
func NewRabbitMQService(cfg NewRabbitMQServiceConfig, logger *zap.Logger) (*RabbitMQService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	logger.Info("Connected to RabbitMQ")
	return &RabbitMQService{conn: conn, channel: ch, logger: logger}, nil
}

func (s *RabbitMQService) declare(queueName string) (amqp.Queue, error) {
	return s.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
}

// Publish sends a persistent JSON message to a RabbitMQ queue. Every message
// gets a fresh MessageId, which consumers use to recognize redeliveries.
func (s *RabbitMQService) Publish(ctx context.Context, queueName string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q, err := s.declare(queueName)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	err = s.channel.Publish(
		"",     // exchange
		q.Name, // routing key (queue name)
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}
	s.logger.Debug("Message published", zap.String("queue", queueName), zap.Int("bytes", len(body)))
	return nil
}

// Consume reads deliveries with manual acknowledgement and settles each one
// according to handler's outcome.
func (s *RabbitMQService) Consume(ctx context.Context, queueName string, handler Handler) error {
	q, err := s.declare(queueName)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s for consuming: %w", queueName, err)
	}

	msgs, err := s.channel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", queueName, err)
	}

	s.logger.Info("Waiting for messages", zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			outcome := handler(ctx, Message{ID: d.MessageId, Body: d.Body, Redelivered: d.Redelivered})
			if err := settle(d, outcome); err != nil {
				s.logger.Error("Failed to settle delivery",
					zap.String("queue", q.Name), zap.Stringer("outcome", outcome), zap.Error(err))
			}
		}
	}
}

// acknowledger is implemented by amqp.Delivery.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
	Reject(requeue bool) error
}

func settle(d acknowledger, outcome Outcome) error {
	switch outcome {
	case Ack:
		return d.Ack(false)
	case Requeue:
		return d.Nack(false, true)
	default:
		return d.Reject(false)
	}
}

// Close closes the RabbitMQ channel and connection.
func (s *RabbitMQService) Close() error {
	var errs []error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing channel: %w", err))
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
