// Package broker carries run requests and outcomes between the CLI, the
// ingest agent and anything else watching the forwarder.
package broker

import (
	"context"
	"errors"
)

// ErrClosed is returned by a broker after Close.
var ErrClosed = errors.New("broker is closed")

// Broker abstracts message publishing and consumption.
// Implemented in memory for tests and single-process use, and on
// Redpanda/Kafka for the distributed agent.
type Broker interface {
	// Publish sends a message to a topic. Redpanda uses key for partition
	// assignment, so messages for one repository stay ordered.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel for consuming messages from a topic.
	// The channel is closed when ctx is done or the broker is closed.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts down the broker connection gracefully.
	Close() error
}

// Message represents a consumed message from a broker.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
