package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdleSession is one candidate returned by ListIdleSessions.
type IdleSession struct {
	SessionID    string
	UserID       string
	AgentID      int
	TeamID       int
	LastActivity time.Time
}

// Gateway is the single write surface to the relational store. Both the
// batch workers and the collector's degraded path go through it, so the
// persistence semantics of the two paths cannot drift apart.
type Gateway interface {
	InsertTokenUsage(ctx context.Context, row *TokenUsage) error
	InsertAgentExecution(ctx context.Context, row *AgentExecution) error
	// UpsertPerformanceMetric folds one execution into the per-agent-per-day
	// aggregate on the (agent_id, metric_date) conflict key.
	UpsertPerformanceMetric(ctx context.Context, agentID int, metricDate time.Time, responseTimeMs float64, tokens int, success bool) error
	InsertContentTopic(ctx context.Context, row *ContentTopic) error
	// UpsertUserMetric folds one session event into the per-user-per-session
	// aggregate on the (user_id, session_id) conflict key.
	UpsertUserMetric(ctx context.Context, row *UserMetric) error
	InsertUserFeedback(ctx context.Context, row *UserFeedback) error

	// HasAutoGeneratedFeedback reports whether the session already received
	// an auto-generated classification row. The idempotency guard for the
	// idle scanner; checked against the store, never against the cache.
	HasAutoGeneratedFeedback(ctx context.Context, sessionID string) (bool, error)
	// ListIdleSessions returns up to limit sessions whose last activity is
	// older than cutoff and that have no auto-generated feedback yet.
	ListIdleSessions(ctx context.Context, cutoff time.Time, limit int) ([]IdleSession, error)
	// ListSessionMessages returns the session transcript in chronological
	// order, bounded to limit messages.
	ListSessionMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)

	Ping(ctx context.Context) error
}

// GormGateway implements Gateway on a GORM connection.
type GormGateway struct {
	db  *gorm.DB
	agg ResponseTimeAggregator
	log *zap.Logger
}

// NewGormGateway creates a gateway. agg decides how response times fold
// into the daily average; nil selects the historical midpoint formula.
func NewGormGateway(db *gorm.DB, agg ResponseTimeAggregator, log *zap.Logger) *GormGateway {
	if agg == nil {
		agg = MidpointAverage
	}
	return &GormGateway{db: db, agg: agg, log: log}
}

func (g *GormGateway) InsertTokenUsage(ctx context.Context, row *TokenUsage) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := g.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert token usage: %w", err)
	}
	return nil
}

func (g *GormGateway) InsertAgentExecution(ctx context.Context, row *AgentExecution) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := g.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert agent execution: %w", err)
	}
	return nil
}

// UpsertPerformanceMetric runs read-modify-write inside a transaction with
// the row locked, so concurrent workers folding into the same (agent, day)
// cannot lose updates.
func (g *GormGateway) UpsertPerformanceMetric(ctx context.Context, agentID int, metricDate time.Time, responseTimeMs float64, tokens int, success bool) error {
	day := metricDay(metricDate)

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pm PerformanceMetric
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("agent_id = ? AND metric_date = ?", agentID, day).
			First(&pm).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			pm = PerformanceMetric{
				AgentID:           agentID,
				MetricDate:        day,
				TotalInteractions: 1,
				AvgResponseTimeMs: g.agg(0, responseTimeMs, 1),
				TokensConsumed:    int64(tokens),
				SuccessRate:       boolRate(success),
			}
			return tx.Create(&pm).Error
		}
		if err != nil {
			return err
		}

		n := pm.TotalInteractions + 1
		pm.AvgResponseTimeMs = g.agg(pm.AvgResponseTimeMs, responseTimeMs, n)
		pm.SuccessRate = (pm.SuccessRate*float64(pm.TotalInteractions) + boolRate(success)) / float64(n)
		pm.TotalInteractions = n
		pm.TokensConsumed += int64(tokens)
		return tx.Save(&pm).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert performance metric: %w", err)
	}
	return nil
}

// metricDay buckets a timestamp into its calendar date in the timestamp's
// own location. Truncating in UTC would shift events near local midnight
// into the neighboring day's row.
func metricDay(ts time.Time) time.Time {
	year, month, day := ts.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func boolRate(success bool) float64 {
	if success {
		return 1
	}
	return 0
}

func (g *GormGateway) InsertContentTopic(ctx context.Context, row *ContentTopic) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := g.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert content topic: %w", err)
	}
	return nil
}

// UpsertUserMetric increments the message and duration counters for an
// existing (user, session) row or creates it.
func (g *GormGateway) UpsertUserMetric(ctx context.Context, row *UserMetric) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing UserMetric
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND session_id = ?", row.UserID, row.SessionID).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(row).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"total_messages":           existing.TotalMessages + row.TotalMessages,
			"session_duration_seconds": existing.SessionDurationSeconds + row.SessionDurationSeconds,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert user metric: %w", err)
	}
	return nil
}

func (g *GormGateway) InsertUserFeedback(ctx context.Context, row *UserFeedback) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := g.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to insert user feedback: %w", err)
	}
	return nil
}

func (g *GormGateway) HasAutoGeneratedFeedback(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&UserFeedback{}).
		Where("session_id = ? AND auto_generated = ?", sessionID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check auto-generated feedback: %w", err)
	}
	return count > 0, nil
}

func (g *GormGateway) ListIdleSessions(ctx context.Context, cutoff time.Time, limit int) ([]IdleSession, error) {
	classified := g.db.Model(&UserFeedback{}).
		Select("session_id").
		Where("auto_generated = ?", true)

	var sessions []ChatSession
	err := g.db.WithContext(ctx).
		Where("last_activity < ?", cutoff).
		Where("session_id NOT IN (?)", classified).
		Order("last_activity DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list idle sessions: %w", err)
	}

	out := make([]IdleSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, IdleSession{
			SessionID:    s.SessionID,
			UserID:       s.UserID,
			AgentID:      s.AgentID,
			TeamID:       s.TeamID,
			LastActivity: s.LastActivity,
		})
	}
	return out, nil
}

func (g *GormGateway) ListSessionMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session messages: %w", err)
	}
	return messages, nil
}

func (g *GormGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
