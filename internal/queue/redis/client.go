package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/queue"
)

// Client implements queue.Broker on Redis lists. Producers LPUSH, workers
// BRPOP, which gives strict FIFO per list.
type Client struct {
	client *goredis.Client
	log    *zap.Logger
}

// NewClient creates a broker client from a redis:// URL. It does not ping;
// the collector decides at startup whether the broker is reachable.
func NewClient(brokerURL string, log *zap.Logger) (*Client, error) {
	opts, err := goredis.ParseURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse broker URL: %w", err)
	}

	log.Info("Broker client created", zap.String("addr", opts.Addr))

	return &Client{
		client: goredis.NewClient(opts),
		log:    log,
	}, nil
}

// Ping verifies the broker connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("broker unavailable: %w", err)
	}
	return nil
}

// Enqueue pushes one payload onto the head of the named list.
func (c *Client) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	if err := c.client.LPush(ctx, queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue to %s: %w", queueName, err)
	}
	return nil
}

// PopBatch blocks up to wait for the first item, then drains without
// blocking until max items are collected or the list is empty.
func (c *Client) PopBatch(ctx context.Context, queueName string, max int, wait time.Duration) ([][]byte, error) {
	res, err := c.client.BRPop(ctx, wait, queueName).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, queue.ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from %s: %w", queueName, err)
	}

	// BRPOP returns [key, value].
	items := [][]byte{[]byte(res[1])}

	for len(items) < max {
		val, err := c.client.RPop(ctx, queueName).Result()
		if errors.Is(err, goredis.Nil) {
			break
		}
		if err != nil {
			// Return what we already popped; those items are no longer in
			// the list and must not be lost to a transient read error.
			c.log.Warn("Batch drain interrupted",
				zap.String("queue", queueName),
				zap.Int("popped", len(items)),
				zap.Error(err))
			break
		}
		items = append(items, []byte(val))
	}

	return items, nil
}

// Depth returns the list length.
func (c *Client) Depth(ctx context.Context, queueName string) (int64, error) {
	n, err := c.client.LLen(ctx, queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read depth of %s: %w", queueName, err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.client.Close()
}
