package store

import (
	"time"

	"gorm.io/datatypes"
)

// TokenUsage is one append-only row per execution event that carried or
// derived token counts.
type TokenUsage struct {
	ID            uint   `gorm:"primaryKey"`
	AgentID       int    `gorm:"index"`
	SessionID     string `gorm:"index"`
	ModelUsed     string
	InputTokens   int
	OutputTokens  int
	CostEstimate  float64
	OperationType string
	CreatedAt     time.Time
}

// AgentExecution stores a truncated raw sample of one execution. Input is
// bounded to 1000 chars and output to 2000 before insert.
type AgentExecution struct {
	ID              uint `gorm:"primaryKey"`
	AgentID         int  `gorm:"index"`
	InputText       string
	OutputText      string
	ToolsUsed       datatypes.JSONSlice[string] `gorm:"type:json"`
	ExecutionTimeMs int64
	TokensUsed      int
	Success         bool
	CreatedAt       time.Time
}

// PerformanceMetric is the per-agent-per-day aggregate, upserted on the
// (agent_id, metric_date) conflict key.
type PerformanceMetric struct {
	ID                uint      `gorm:"primaryKey"`
	AgentID           int       `gorm:"uniqueIndex:idx_perf_agent_date,priority:1;not null"`
	MetricDate        time.Time `gorm:"uniqueIndex:idx_perf_agent_date,priority:2;not null;type:date"`
	TotalInteractions int64     `gorm:"not null"`
	AvgResponseTimeMs float64   `gorm:"not null"`
	TokensConsumed    int64     `gorm:"not null"`
	SuccessRate       float64   `gorm:"not null"`
}

// ContentTopic is one append-only row per message whose text yielded at
// least one extracted topic.
type ContentTopic struct {
	ID              uint   `gorm:"primaryKey"`
	SessionID       string `gorm:"index"`
	AgentID         int
	ExtractedTopics datatypes.JSONSlice[string] `gorm:"type:json"`
	MessageContent  string
	TopicKeywords   datatypes.JSONSlice[string] `gorm:"type:json"`
	ConfidenceScore float64
	CreatedAt       time.Time
}

// UserMetric is the per-user-per-session aggregate, upserted on the
// (user_id, session_id) conflict key.
type UserMetric struct {
	ID                     uint   `gorm:"primaryKey"`
	UserID                 string `gorm:"uniqueIndex:idx_user_session,priority:1;not null"`
	SessionID              string `gorm:"uniqueIndex:idx_user_session,priority:2;not null"`
	AgentID                int
	TeamID                 int
	TotalMessages          int `gorm:"not null"`
	SessionDurationSeconds int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// UserFeedback holds both explicit user feedback and rows produced by the
// classification pipeline; the latter are flagged AutoGenerated.
type UserFeedback struct {
	ID              uint   `gorm:"primaryKey"`
	SessionID       string `gorm:"index"`
	UserID          string
	AgentID         int
	TeamID          int
	Rating          int // 1-5
	IssueCategory   string
	FeedbackComment string
	Sentiment       string
	AutoGenerated   bool `gorm:"index"`
	CreatedAt       time.Time
}

// ChatSession mirrors the conversation table owned by the chat service.
// This pipeline only reads it to find idle sessions; it never writes it.
type ChatSession struct {
	ID           uint   `gorm:"primaryKey"`
	SessionID    string `gorm:"uniqueIndex"`
	UserID       string
	AgentID      int
	TeamID       int
	LastActivity time.Time `gorm:"index"`
	CreatedAt    time.Time
}

// ChatMessage mirrors the message table owned by the chat service.
// Read-only here, used to build classification transcripts.
type ChatMessage struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	Sender    string
	Content   string
	Metadata  datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time
}
