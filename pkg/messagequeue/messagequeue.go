package messagequeue

import "context"

// Outcome tells the queue what to do with a delivered message.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Requeue returns the message to the queue for another attempt.
	Requeue
	// Reject drops the message without redelivery.
	Reject
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Message is one delivery handed to a Handler.
type Message struct {
	// ID is assigned by the publisher and stays the same across redeliveries.
	ID          string
	Body        []byte
	Redelivered bool
}

// Handler processes one message and decides its outcome.
type Handler func(ctx context.Context, msg Message) Outcome

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume delivers messages of queueName to handler until ctx is done or
	// the connection closes.
	Consume(ctx context.Context, queueName string, handler Handler) error
	Close() error
}
