package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/activity"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/classifier"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/domain"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/store"
	"github.com/henriqueCosta-Geo/agent-metrics-service/internal/topics"
)

// Text sample bounds applied before persisting raw rows.
const (
	maxInputSample   = 1000
	maxOutputSample  = 2000
	maxContentSample = 500
)

// Confidence attached to topics derived by the classification engine.
const engineTopicConfidence = 0.9

// Processor turns decoded metric events into persisted rows. It holds all
// transformation logic so the batch path and the collector's degraded
// direct path always behave identically.
type Processor struct {
	gateway store.Gateway
	engine  classifier.Engine
	cache   *activity.Cache
	log     *zap.Logger
}

// NewProcessor creates a processor. engine may be nil when classification
// is disabled; classification events then fail and are dropped.
func NewProcessor(gateway store.Gateway, engine classifier.Engine, cache *activity.Cache, log *zap.Logger) *Processor {
	return &Processor{
		gateway: gateway,
		engine:  engine,
		cache:   cache,
		log:     log,
	}
}

// Process persists one event. Dispatch is exhaustive over the event union;
// an unknown category is a programming error surfaced as an error value.
func (p *Processor) Process(ctx context.Context, ev *domain.Event) error {
	switch ev.Category {
	case domain.CategoryExecution:
		return p.processExecution(ctx, ev.Execution)
	case domain.CategoryContent:
		return p.processContent(ctx, ev.Content)
	case domain.CategorySession:
		return p.processSession(ctx, ev.Session)
	case domain.CategoryClassification:
		return p.processClassification(ctx, ev.Classification)
	}
	return fmt.Errorf("unknown event category: %q", ev.Category)
}

// processExecution writes the token usage row, the truncated raw execution
// sample and folds the event into the per-agent-per-day aggregate.
func (p *Processor) processExecution(ctx context.Context, ev *domain.ExecutionEvent) error {
	tokens := ev.InputTokens + ev.OutputTokens

	if ev.InputTokens > 0 || ev.OutputTokens > 0 {
		row := &store.TokenUsage{
			AgentID:       ev.AgentID,
			SessionID:     ev.SessionID,
			ModelUsed:     ev.Model,
			InputTokens:   ev.InputTokens,
			OutputTokens:  ev.OutputTokens,
			CostEstimate:  ev.CostEstimate,
			OperationType: ev.OperationType,
			CreatedAt:     ev.Timestamp,
		}
		if err := p.gateway.InsertTokenUsage(ctx, row); err != nil {
			return err
		}
	}

	exec := &store.AgentExecution{
		AgentID:         ev.AgentID,
		InputText:       truncate(ev.InputText, maxInputSample),
		OutputText:      truncate(ev.OutputText, maxOutputSample),
		ToolsUsed:       ev.ToolsUsed,
		ExecutionTimeMs: ev.ExecutionTimeMs,
		TokensUsed:      tokens,
		Success:         ev.Success,
		CreatedAt:       ev.Timestamp,
	}
	if err := p.gateway.InsertAgentExecution(ctx, exec); err != nil {
		return err
	}

	return p.gateway.UpsertPerformanceMetric(ctx, ev.AgentID, ev.Timestamp,
		float64(ev.ExecutionTimeMs), tokens, ev.Success)
}

// processContent extracts topics and persists a row only when at least one
// topic was detected.
func (p *Processor) processContent(ctx context.Context, ev *domain.ContentEvent) error {
	detected := topics.Extract(ev.MessageContent)
	if len(detected) == 0 {
		return nil
	}

	row := &store.ContentTopic{
		SessionID:       ev.SessionID,
		AgentID:         ev.AgentID,
		ExtractedTopics: detected,
		MessageContent:  truncate(ev.MessageContent, maxContentSample),
		TopicKeywords:   topics.Keywords(ev.MessageContent),
		ConfidenceScore: topics.DefaultConfidence,
		CreatedAt:       ev.Timestamp,
	}

	p.log.Debug("Topics extracted",
		zap.String("session_id", ev.SessionID),
		zap.Strings("topics", detected))

	return p.gateway.InsertContentTopic(ctx, row)
}

// processSession folds the event into the (user, session) aggregate and
// refreshes the activity cache.
func (p *Processor) processSession(ctx context.Context, ev *domain.SessionEvent) error {
	userID := ev.UserID
	if userID == "" {
		userID = "anonymous"
	}

	row := &store.UserMetric{
		UserID:                 userID,
		SessionID:              ev.SessionID,
		AgentID:                ev.AgentID,
		TeamID:                 ev.TeamID,
		TotalMessages:          ev.MessageCount,
		SessionDurationSeconds: ev.DurationSeconds,
	}
	if err := p.gateway.UpsertUserMetric(ctx, row); err != nil {
		return err
	}

	p.cache.Touch(activity.Record{
		SessionID:    ev.SessionID,
		UserID:       userID,
		AgentID:      ev.AgentID,
		TeamID:       ev.TeamID,
		StartTime:    ev.Timestamp,
		MessageCount: ev.MessageCount,
	})

	return nil
}

// processClassification calls the engine and persists its analysis as an
// auto-generated feedback row, plus a content-topic row when the engine
// returned topics. A malformed engine result is an error; the caller logs
// and drops it without retrying.
func (p *Processor) processClassification(ctx context.Context, req *domain.ClassificationRequest) error {
	if p.engine == nil {
		return fmt.Errorf("no classification engine configured")
	}

	result, err := p.engine.Classify(ctx, req.SessionID, req.Messages)
	if err != nil {
		return err
	}

	userID := req.UserID
	if userID == "" {
		userID = "classified"
	}

	feedback := &store.UserFeedback{
		SessionID:       req.SessionID,
		UserID:          userID,
		AgentID:         req.AgentID,
		TeamID:          req.TeamID,
		Rating:          result.Satisfaction,
		IssueCategory:   result.Category,
		FeedbackComment: result.Summary,
		Sentiment:       result.Sentiment,
		AutoGenerated:   true,
	}
	if err := p.gateway.InsertUserFeedback(ctx, feedback); err != nil {
		return err
	}

	if len(result.Topics) > 0 {
		row := &store.ContentTopic{
			SessionID:       req.SessionID,
			AgentID:         req.AgentID,
			ExtractedTopics: result.Topics,
			TopicKeywords:   result.Keywords,
			ConfidenceScore: engineTopicConfidence,
		}
		if err := p.gateway.InsertContentTopic(ctx, row); err != nil {
			return err
		}
	}

	p.log.Info("Conversation classified",
		zap.String("session_id", req.SessionID),
		zap.String("trigger", req.TriggerReason),
		zap.String("category", result.Category),
		zap.Int("satisfaction", result.Satisfaction))

	return nil
}

// truncate bounds s to max runes without splitting a multi-byte character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
