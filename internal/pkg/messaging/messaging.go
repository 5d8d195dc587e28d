package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when Publish is called without a topic/subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned when publishing on a closed client.
	ErrClosed = errors.New("messaging: client is closed")
)

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	io.Closer
	Publish(ctx context.Context, destination string, msg Message) (PublishResult, error)
}

// Message is a broker-agnostic outgoing message.
type Message struct {
	Body []byte
	// Key is used by Kafka for partitioning and by Pub/Sub as the ordering key.
	Key []byte
	// Headers map to Kafka/NATS headers and Pub/Sub attributes. NSQ has no
	// headers and drops them.
	Headers []Header
}

// Header is a key/value pair carried with a message.
type Header struct {
	Key   string
	Value string
}

// PublishResult carries whatever the broker reports back.
type PublishResult struct {
	MessageID   string
	Destination string
	Timestamp   time.Time
}
