// Package collector implements the ingestion API of the metrics pipeline:
// four fire-and-forget entry points that enrich, enqueue and, when the
// broker is unavailable, persist events directly. No call here may ever
// fail the business operation that produced the event.
package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/activity"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/queue"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/stats"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/worker"
)

// Ingestor is the producer-facing contract of the collector. All four
// operations are fire-and-forget: they never return an error and never
// panic across the call boundary.
type Ingestor interface {
	CollectExecution(ctx context.Context, ev domain.ExecutionEvent)
	CollectContent(ctx context.Context, ev domain.ContentEvent)
	CollectSession(ctx context.Context, ev domain.SessionEvent)
	RequestClassification(ctx context.Context, req domain.ClassificationRequest)
}

// Collector routes metric events to the broker, falling back to the shared
// processor when enqueueing is not possible. The same processor serves the
// batch workers, so the two paths cannot diverge.
type Collector struct {
	broker    queue.Broker
	processor *worker.Processor
	cache     *activity.Cache
	log       *zap.Logger

	// degraded is set once at startup when the broker is unreachable and
	// never cleared: no reconnection loop, by contract.
	degraded atomic.Bool
}

// New creates a collector. Call Init before use.
func New(broker queue.Broker, processor *worker.Processor, cache *activity.Cache, log *zap.Logger) *Collector {
	return &Collector{
		broker:    broker,
		processor: processor,
		cache:     cache,
		log:       log,
	}
}

// Init probes the broker once. On failure the collector switches to
// degraded mode for the lifetime of the process: every event is written
// directly to the store.
func (c *Collector) Init(ctx context.Context) {
	if err := c.broker.Ping(ctx); err != nil {
		c.degraded.Store(true)
		c.log.Warn("Broker unavailable at startup, collector running in degraded mode", zap.Error(err))
		return
	}
	c.log.Info("Collector connected to broker")
}

// Degraded reports whether the collector is permanently bypassing the
// broker.
func (c *Collector) Degraded() bool {
	return c.degraded.Load()
}

// CollectExecution records one agent execution. Missing token counts are
// estimated from the text samples and missing cost from the model price
// table before the event enters the pipeline.
func (c *Collector) CollectExecution(ctx context.Context, ev domain.ExecutionEvent) {
	defer c.guard(domain.CategoryExecution)

	if ev.InputTokens == 0 && ev.InputText != "" {
		ev.InputTokens = EstimateTokens(ev.InputText)
	}
	if ev.OutputTokens == 0 && ev.OutputText != "" {
		ev.OutputTokens = EstimateTokens(ev.OutputText)
	}
	if ev.CostEstimate == 0 && (ev.InputTokens > 0 || ev.OutputTokens > 0) {
		ev.CostEstimate = EstimateCost(ev.Model, ev.InputTokens, ev.OutputTokens)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	c.dispatch(ctx, domain.NewExecutionEvent(ev))
}

// CollectContent records one message body for topic analysis.
func (c *Collector) CollectContent(ctx context.Context, ev domain.ContentEvent) {
	defer c.guard(domain.CategoryContent)

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	c.dispatch(ctx, domain.NewContentEvent(ev))
}

// CollectSession records chat session activity and refreshes the activity
// cache immediately, before the event clears the pipeline.
func (c *Collector) CollectSession(ctx context.Context, ev domain.SessionEvent) {
	defer c.guard(domain.CategorySession)

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.MessageCount == 0 {
		ev.MessageCount = 1
	}

	c.cache.Touch(activity.Record{
		SessionID:    ev.SessionID,
		UserID:       ev.UserID,
		AgentID:      ev.AgentID,
		TeamID:       ev.TeamID,
		StartTime:    ev.Timestamp,
		MessageCount: ev.MessageCount,
	})

	c.dispatch(ctx, domain.NewSessionEvent(ev))
}

// RequestClassification submits a conversation for analysis.
func (c *Collector) RequestClassification(ctx context.Context, req domain.ClassificationRequest) {
	defer c.guard(domain.CategoryClassification)

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	if req.TotalMessages == 0 {
		req.TotalMessages = len(req.Messages)
	}

	stats.ClassificationsIssued.WithLabelValues(req.TriggerReason).Inc()

	c.dispatch(ctx, domain.NewClassificationRequest(req))
}

// dispatch enqueues the event, or writes it directly when the process is
// degraded or this particular enqueue fails.
func (c *Collector) dispatch(ctx context.Context, ev *domain.Event) {
	stats.EventsCollected.WithLabelValues(string(ev.Category)).Inc()

	if c.degraded.Load() {
		c.writeDirect(ctx, ev)
		return
	}

	payload, err := ev.Payload()
	if err != nil {
		c.log.Error("Failed to serialize event",
			zap.String("category", string(ev.Category)),
			zap.Error(err))
		stats.EventsDropped.WithLabelValues(string(ev.Category), "serialize").Inc()
		return
	}

	if err := c.broker.Enqueue(ctx, ev.Category.QueueName(), payload); err != nil {
		c.log.Warn("Enqueue failed, writing event directly",
			zap.String("category", string(ev.Category)),
			zap.String("session_id", ev.SessionID()),
			zap.Error(err))
		c.writeDirect(ctx, ev)
		return
	}

	c.log.Debug("Event enqueued",
		zap.String("category", string(ev.Category)),
		zap.String("session_id", ev.SessionID()))
}

// writeDirect is the single degraded path: the same processor the batch
// workers use, invoked synchronously.
func (c *Collector) writeDirect(ctx context.Context, ev *domain.Event) {
	if err := c.processor.Process(ctx, ev); err != nil {
		c.log.Error("Direct write failed, event dropped",
			zap.String("category", string(ev.Category)),
			zap.String("session_id", ev.SessionID()),
			zap.Error(err))
		stats.EventsDropped.WithLabelValues(string(ev.Category), "direct_write").Inc()
		return
	}
	stats.DirectWrites.WithLabelValues(string(ev.Category)).Inc()
}

// guard keeps internal failures from escaping to the producer.
func (c *Collector) guard(category domain.Category) {
	if r := recover(); r != nil {
		c.log.Error("Collector recovered from panic",
			zap.String("category", string(category)),
			zap.Any("panic", r))
		stats.EventsDropped.WithLabelValues(string(category), "panic").Inc()
	}
}
