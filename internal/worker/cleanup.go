package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/activity"
)

// CleanupWorker periodically evicts stale entries from the session
// activity cache. Pure in-memory work, no persistence side effects.
type CleanupWorker struct {
	cache    *activity.Cache
	interval time.Duration
	ttl      time.Duration
	log      *zap.Logger
}

// NewCleanupWorker creates the cleanup loop. interval defaults to 1h and
// ttl to 24h when unset.
func NewCleanupWorker(cache *activity.Cache, interval, ttl time.Duration, log *zap.Logger) *CleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CleanupWorker{
		cache:    cache,
		interval: interval,
		ttl:      ttl,
		log:      log,
	}
}

// Run loops until ctx is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("ttl", w.ttl))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Cleanup worker shutting down")
			return nil
		case <-ticker.C:
			removed := w.cache.Evict(time.Now().Add(-w.ttl))
			w.log.Info("Session cache cleanup finished",
				zap.Int("evicted", removed),
				zap.Int("remaining", w.cache.Len()))
		}
	}
}
