package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/stats"
)

// Status is the operational snapshot of the pipeline: the only surface
// through which this subsystem's failures are visible.
type Status struct {
	ActiveSessions  int              `json:"active_sessions"`
	ActiveUsers     int              `json:"active_users"`
	BrokerConnected bool             `json:"broker_connected"`
	Degraded        bool             `json:"degraded"`
	QueueDepths     map[string]int64 `json:"queue_depths"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Status reads the current pipeline state. Queue depths are zero when the
// broker is unreachable; the snapshot itself never fails.
func (c *Collector) Status(ctx context.Context) Status {
	s := Status{
		ActiveSessions: c.cache.Len(),
		ActiveUsers:    c.cache.ActiveUsers(),
		Degraded:       c.degraded.Load(),
		QueueDepths:    make(map[string]int64, len(domain.Categories)),
		Timestamp:      time.Now(),
	}

	if s.Degraded {
		return s
	}

	s.BrokerConnected = c.broker.Ping(ctx) == nil
	if !s.BrokerConnected {
		return s
	}

	for _, category := range domain.Categories {
		depth, err := c.broker.Depth(ctx, category.QueueName())
		if err != nil {
			c.log.Warn("Failed to read queue depth",
				zap.String("category", string(category)),
				zap.Error(err))
			continue
		}
		s.QueueDepths[string(category)] = depth
		stats.QueueDepth.WithLabelValues(string(category)).Set(float64(depth))
	}

	return s
}
