package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/queue"
)

// memoryBroker is an in-process FIFO-list broker for tests.
type memoryBroker struct {
	mu     sync.Mutex
	queues map[string][][]byte
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{queues: make(map[string][][]byte)}
}

func (b *memoryBroker) Ping(ctx context.Context) error { return nil }

func (b *memoryBroker) Enqueue(ctx context.Context, queueName string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[queueName] = append(b.queues[queueName], payload)
	return nil
}

func (b *memoryBroker) PopBatch(ctx context.Context, queueName string, max int, wait time.Duration) ([][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.queues[queueName]
	if len(items) == 0 {
		return nil, queue.ErrEmpty
	}
	if len(items) > max {
		b.queues[queueName] = items[max:]
		return items[:max], nil
	}
	b.queues[queueName] = nil
	return items, nil
}

func (b *memoryBroker) Depth(ctx context.Context, queueName string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.queues[queueName])), nil
}

func (b *memoryBroker) Close() error { return nil }

func (b *memoryBroker) depth(queueName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queueName])
}

func enqueueEvent(t *testing.T, b *memoryBroker, ev *domain.Event) {
	t.Helper()
	payload, err := ev.Payload()
	require.NoError(t, err)
	require.NoError(t, b.Enqueue(context.Background(), ev.Category.QueueName(), payload))
}

func testPoolConfig() PoolConfig {
	return PoolConfig{
		BatchSize:                 10,
		PollTimeout:               5 * time.Millisecond,
		ClassificationPollTimeout: 5 * time.Millisecond,
		FailureBackoff:            time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPool_ConsumesAllCategories(t *testing.T) {
	broker := newMemoryBroker()
	gw := new(MockGateway)
	gw.On("UpsertUserMetric", mock.Anything, mock.Anything).Return(nil)
	p, cache := newTestProcessor(gw, nil)

	enqueueEvent(t, broker, domain.NewSessionEvent(domain.SessionEvent{
		SessionID:    "sess-a",
		UserID:       "u1",
		MessageCount: 1,
		Timestamp:    time.Now(),
	}))

	pool := NewPool(broker, p, testPoolConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	waitFor(t, time.Second, func() bool {
		_, ok := cache.Get("sess-a")
		return ok
	})
	assert.Equal(t, 0, broker.depth(domain.CategorySession.QueueName()))

	cancel()
	require.NoError(t, <-done)
}

func TestPool_FailedBatchDoesNotKillLoop(t *testing.T) {
	broker := newMemoryBroker()
	gw := new(MockGateway)
	// First upsert fails, the rest succeed; the loop must keep consuming.
	gw.On("UpsertUserMetric", mock.Anything, mock.Anything).
		Return(assert.AnError).Once()
	gw.On("UpsertUserMetric", mock.Anything, mock.Anything).Return(nil)
	p, cache := newTestProcessor(gw, nil)

	enqueueEvent(t, broker, domain.NewSessionEvent(domain.SessionEvent{
		SessionID: "sess-fail", UserID: "u1", MessageCount: 1,
	}))

	pool := NewPool(broker, p, testPoolConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	waitFor(t, time.Second, func() bool {
		return broker.depth(domain.CategorySession.QueueName()) == 0
	})

	enqueueEvent(t, broker, domain.NewSessionEvent(domain.SessionEvent{
		SessionID: "sess-ok", UserID: "u2", MessageCount: 1,
	}))

	waitFor(t, time.Second, func() bool {
		_, ok := cache.Get("sess-ok")
		return ok
	})

	cancel()
	require.NoError(t, <-done)
}

func TestPool_UndecodableMessageDropped(t *testing.T) {
	broker := newMemoryBroker()
	gw := new(MockGateway)
	gw.On("UpsertUserMetric", mock.Anything, mock.Anything).Return(nil)
	p, cache := newTestProcessor(gw, nil)

	require.NoError(t, broker.Enqueue(context.Background(),
		domain.CategorySession.QueueName(), []byte("not json")))
	enqueueEvent(t, broker, domain.NewSessionEvent(domain.SessionEvent{
		SessionID: "sess-good", UserID: "u1", MessageCount: 1,
	}))

	pool := NewPool(broker, p, testPoolConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	// The bad message is dropped and the good one behind it still lands.
	waitFor(t, time.Second, func() bool {
		_, ok := cache.Get("sess-good")
		return ok
	})

	cancel()
	require.NoError(t, <-done)
}

func TestPool_Liveness(t *testing.T) {
	broker := newMemoryBroker()
	gw := new(MockGateway)
	p, _ := newTestProcessor(gw, nil)

	pool := NewPool(broker, p, testPoolConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Start(ctx) }()

	waitFor(t, time.Second, func() bool {
		return len(pool.Liveness()) == len(domain.Categories)
	})
	for _, category := range domain.Categories {
		assert.WithinDuration(t, time.Now(), pool.Liveness()[string(category)], time.Second)
	}

	cancel()
	require.NoError(t, <-done)
}

func TestPoolConfig_Defaults(t *testing.T) {
	pool := NewPool(newMemoryBroker(), nil, PoolConfig{}, zap.NewNop())
	assert.Equal(t, 10, pool.config.BatchSize)
	assert.Equal(t, time.Second, pool.config.PollTimeout)
	assert.Equal(t, 10*time.Second, pool.config.ClassificationPollTimeout)
}
