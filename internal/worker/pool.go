package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/queue"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/stats"
)

// PoolConfig tunes the category loops.
type PoolConfig struct {
	// BatchSize is the maximum number of events popped per iteration.
	BatchSize int
	// PollTimeout bounds the wait for execution, content and session pops.
	PollTimeout time.Duration
	// ClassificationPollTimeout bounds the classification pop; that loop is
	// less throughput-sensitive and can wait longer.
	ClassificationPollTimeout time.Duration
	// FailureBackoff is how long a loop pauses after a failed iteration.
	FailureBackoff time.Duration
}

// Pool runs one consuming loop per event category. The loops are
// independent failure domains: a panic or error in one batch is logged and
// that loop continues after a backoff, without touching its siblings.
type Pool struct {
	broker    queue.Broker
	processor *Processor
	config    PoolConfig
	log       *zap.Logger

	mu         sync.Mutex
	heartbeats map[domain.Category]time.Time
}

// NewPool creates the worker pool.
func NewPool(broker queue.Broker, processor *Processor, config PoolConfig, log *zap.Logger) *Pool {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = time.Second
	}
	if config.ClassificationPollTimeout <= 0 {
		config.ClassificationPollTimeout = 10 * time.Second
	}
	if config.FailureBackoff <= 0 {
		config.FailureBackoff = time.Second
	}

	return &Pool{
		broker:     broker,
		processor:  processor,
		config:     config,
		log:        log,
		heartbeats: make(map[domain.Category]time.Time),
	}
}

// Start runs all category loops until ctx is cancelled. Each loop finishes
// its in-flight batch before exiting; unconsumed items stay in the broker
// for the next process start.
func (p *Pool) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, category := range domain.Categories {
		category := category
		g.Go(func() error {
			p.runLoop(ctx, category)
			return nil
		})
	}

	p.log.Info("Worker pool started", zap.Int("loops", len(domain.Categories)))
	return g.Wait()
}

// Liveness returns the last iteration time of every loop.
func (p *Pool) Liveness() map[string]time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]time.Time, len(p.heartbeats))
	for category, t := range p.heartbeats {
		out[string(category)] = t
	}
	return out
}

func (p *Pool) beat(category domain.Category) {
	p.mu.Lock()
	p.heartbeats[category] = time.Now()
	p.mu.Unlock()
}

func (p *Pool) pollTimeout(category domain.Category) time.Duration {
	if category == domain.CategoryClassification {
		return p.config.ClassificationPollTimeout
	}
	return p.config.PollTimeout
}

func (p *Pool) runLoop(ctx context.Context, category domain.Category) {
	log := p.log.With(zap.String("category", string(category)))
	log.Info("Worker loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Worker loop shutting down")
			return
		default:
		}

		p.beat(category)

		payloads, err := p.broker.PopBatch(ctx, category.QueueName(), p.config.BatchSize, p.pollTimeout(category))
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Worker loop shutting down")
				return
			}
			log.Error("Failed to pop batch", zap.Error(err))
			p.backoff(ctx)
			continue
		}

		// The batch is already out of the broker; process it on a context
		// that survives shutdown so writes are not aborted mid-batch.
		if ok := p.processBatch(context.WithoutCancel(ctx), category, payloads, log); !ok {
			p.backoff(ctx)
		}
	}
}

// processBatch handles one popped batch. Panics and per-event errors are
// contained here; the return value reports whether the iteration was clean.
func (p *Pool) processBatch(ctx context.Context, category domain.Category, payloads [][]byte, log *zap.Logger) (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			log.Error("Worker batch panicked", zap.Any("panic", r))
			stats.EventsDropped.WithLabelValues(string(category), "panic").Inc()
			ok = false
		}
	}()

	for _, payload := range payloads {
		ev, err := domain.DecodeEvent(category, payload)
		if err != nil {
			log.Warn("Dropping undecodable message", zap.Error(err))
			stats.EventsDropped.WithLabelValues(string(category), "decode").Inc()
			continue
		}

		if err := p.processor.Process(ctx, ev); err != nil {
			log.Error("Failed to process event",
				zap.String("session_id", ev.SessionID()),
				zap.Error(err))
			stats.EventsDropped.WithLabelValues(string(category), "processing").Inc()
			ok = false
			continue
		}

		stats.EventsPersisted.WithLabelValues(string(category)).Inc()
	}

	log.Debug("Batch processed", zap.Int("events", len(payloads)))
	return ok
}

func (p *Pool) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.config.FailureBackoff):
	}
}
