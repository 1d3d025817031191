package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/activity"
)

func TestCleanupWorker_EvictsStaleSessions(t *testing.T) {
	cache := activity.NewCache()
	cache.Touch(activity.Record{
		SessionID:    "stale",
		LastActivity: time.Now().Add(-48 * time.Hour),
	})
	cache.Touch(activity.Record{SessionID: "fresh"})

	w := NewCleanupWorker(cache, 5*time.Millisecond, 24*time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, time.Second, func() bool {
		_, ok := cache.Get("stale")
		return !ok
	})
	_, ok := cache.Get("fresh")
	assert.True(t, ok)

	cancel()
	require.NoError(t, <-done)
}

func TestCleanupWorker_Defaults(t *testing.T) {
	w := NewCleanupWorker(activity.NewCache(), 0, 0, zap.NewNop())
	assert.Equal(t, time.Hour, w.interval)
	assert.Equal(t, 24*time.Hour, w.ttl)
}
