package queue

import (
	"context"
	"errors"
	"time"
)

// ErrEmpty is returned by PopBatch when the list yields nothing within the
// wait window. Workers treat it as an idle iteration, not a failure.
var ErrEmpty = errors.New("queue: no messages available")

// Broker is the handle to the external FIFO-list store that buffers metric
// events between producers and the worker loops. Implementations push to
// the head and pop from the tail, so order is FIFO within one list. There
// is no ordering guarantee across lists.
type Broker interface {
	// Ping verifies connectivity. Called once at startup; a failure pins
	// the process in degraded mode for its lifetime.
	Ping(ctx context.Context) error

	// Enqueue appends one serialized event to the named list.
	Enqueue(ctx context.Context, queueName string, payload []byte) error

	// PopBatch removes up to max items from the named list, blocking up to
	// wait for the first item. Returns ErrEmpty when nothing arrived.
	PopBatch(ctx context.Context, queueName string, max int, wait time.Duration) ([][]byte, error)

	// Depth returns the current length of the named list.
	Depth(ctx context.Context, queueName string) (int64, error)

	Close() error
}
